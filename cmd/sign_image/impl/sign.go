// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package impl is the implementation of the image signing tool.
package impl

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/keys"
	"github.com/google/starlet-mini/internal/ppc"
)

// KeyOpts configures key generation.
type KeyOpts struct {
	// Type is one of the key types in package keys.
	Type    string
	Name    string
	OutPriv string
	OutPub  string
}

// GenerateKeys creates a note key pair and writes it out. Existing files are
// never overwritten.
func GenerateKeys(opts KeyOpts) error {
	if opts.Name == "" {
		return errors.New("key name required")
	}
	skey, vkey, err := keys.GenerateKey(opts.Type, opts.Name)
	if err != nil {
		return fmt.Errorf("unable to create key: %w", err)
	}
	if err := writeFileIfNotExists(opts.OutPriv, skey); err != nil {
		return err
	}
	return writeFileIfNotExists(opts.OutPub, vkey)
}

// SignOpts configures signing.
type SignOpts struct {
	// PrivKeyFile holds a note signer key.
	PrivKeyFile string
	// ImagePath is the PowerPC image to sign. The signature is written next to
	// it with ppc.SignatureSuffix appended.
	ImagePath string
}

// Sign signs an image and returns the path of the signature it wrote.
func Sign(opts SignOpts) (string, error) {
	skey, err := readKey(opts.PrivKeyFile)
	if err != nil {
		return "", err
	}
	s, err := keys.NewSigner(skey)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	img, err := os.ReadFile(opts.ImagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	sig, err := ppc.SignImage(img, s)
	if err != nil {
		return "", fmt.Errorf("failed to sign image: %w", err)
	}
	out := opts.ImagePath + ppc.SignatureSuffix
	if err := os.WriteFile(out, sig, 0o644); err != nil {
		return "", fmt.Errorf("failed to write signature: %w", err)
	}
	glog.Infof("Signed %s (%s) as %s", opts.ImagePath, strings.TrimSpace(ppc.ImageText(img)), s.Name())
	return out, nil
}

// Verify checks the signature next to imagePath against the public key of
// type kType in pubKeyFile.
func Verify(kType, pubKeyFile, imagePath string) error {
	vkey, err := readKey(pubKeyFile)
	if err != nil {
		return err
	}
	v, err := keys.NewVerifier(kType, vkey)
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	sig, err := os.ReadFile(imagePath + ppc.SignatureSuffix)
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}
	return ppc.VerifyImage(img, sig, v)
}

func readKey(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Writes key files. Ensures files do not already exist to avoid accidental overwriting.
func writeFileIfNotExists(filename string, key string) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("unable to create new key file %q: %w", filename, err)
	}
	defer file.Close()
	if _, err := file.WriteString(key); err != nil {
		return fmt.Errorf("unable to write new key file %q: %w", filename, err)
	}
	return nil
}
