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

package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mod/sumdb/note"
)

// GenerateKey creates an encoded signer and verifier key pair of the given
// type.
func GenerateKey(kType, name string) (skey, vkey string, err error) {
	switch kType {
	case Ed25519, "":
		return note.GenerateKey(rand.Reader, name)
	case ECDSA:
		return generateECDSAKey(name)
	}
	return "", "", fmt.Errorf("unknown key type %q", kType)
}

func generateECDSAKey(name string) (string, string, error) {
	if !isValidName(name) {
		return "", "", errVerifierID
	}
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", err
	}
	kh, err := ecdsaKeyHash(&priv.PublicKey)
	if err != nil {
		return "", "", err
	}
	spki, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return "", "", err
	}
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return "", "", err
	}
	hash := fmt.Sprintf("%08x", kh)
	skey := "PRIVATE+KEY+" + name + "+" + hash + "+" + base64.StdEncoding.EncodeToString(append([]byte{algECDSA}, der...))
	vkey := name + "+" + hash + "+" + base64.StdEncoding.EncodeToString(append([]byte{algECDSA}, spki...))
	return skey, vkey, nil
}

// NewSigner parses an encoded signer key of either type.
func NewSigner(skey string) (note.Signer, error) {
	if s, err := note.NewSigner(skey); err == nil {
		return s, nil
	}
	return NewECDSASigner(skey)
}

// NewECDSASigner parses a signer key of the form
// PRIVATE+KEY+<name>+<hex keyhash>+<base64(0x02 || SEC 1 DER)>.
func NewECDSASigner(skey string) (note.Signer, error) {
	priv1, skey, _ := strings.Cut(skey, "+")
	priv2, skey, _ := strings.Cut(skey, "+")
	name, skey, _ := strings.Cut(skey, "+")
	hash16, key64, _ := strings.Cut(skey, "+")
	key, err := base64.StdEncoding.DecodeString(key64)
	if priv1 != "PRIVATE" || priv2 != "KEY" || len(hash16) != 8 || err != nil || !isValidName(name) || len(key) == 0 {
		return nil, errVerifierID
	}
	if key[0] != algECDSA {
		return nil, errVerifierAlg
	}
	priv, err := x509.ParseECPrivateKey(key[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	kh, err := ecdsaKeyHash(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	if fmt.Sprintf("%08x", kh) != hash16 {
		return nil, errVerifierHash
	}
	return &signer{
		name: name,
		hash: kh,
		sign: func(msg []byte) ([]byte, error) {
			dgst := sha256.Sum256(msg)
			return ecdsa.SignASN1(rand.Reader, priv, dgst[:])
		},
	}, nil
}

// signer is a trivial Signer implementation.
type signer struct {
	name string
	hash uint32
	sign func([]byte) ([]byte, error)
}

func (s *signer) Name() string                    { return s.name }
func (s *signer) KeyHash() uint32                 { return s.hash }
func (s *signer) Sign(msg []byte) ([]byte, error) { return s.sign(msg) }

// isValidName reports whether name is valid.
// It must be non-empty and not have any Unicode spaces or pluses.
func isValidName(name string) bool {
	return name != "" && utf8.ValidString(name) && strings.IndexFunc(name, unicode.IsSpace) < 0 && !strings.Contains(name, "+")
}
