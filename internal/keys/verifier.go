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

// Package keys parses the keys PowerPC images are signed with.
//
// Two kinds of key are understood: the Ed25519 keys native to
// golang.org/x/mod/sumdb/note, and ECDSA P-256 keys of the form used by the
// Sigstore Rekor log, for images signed by an HSM.
package keys

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/sumdb/note"
)

// Key types.
const (
	Ed25519 = "ed25519"
	ECDSA   = "ecdsa"
)

// algECDSA is the algorithm byte which prefixes encoded ECDSA keys.
const algECDSA = 2

// NewVerifier returns a verifier for a key of the given type. An empty type
// means Ed25519.
func NewVerifier(kType, vkey string) (note.Verifier, error) {
	switch kType {
	case Ed25519, "":
		return note.NewVerifier(vkey)
	case ECDSA:
		return NewECDSAVerifier(vkey)
	}
	return nil, fmt.Errorf("unknown key type %q", kType)
}

// NewECDSAVerifier parses a verifier key of the form
// <name>+<hex keyhash>+<base64(0x02 || SPKI)>.
func NewECDSAVerifier(vkey string) (note.Verifier, error) {
	parts := strings.SplitN(vkey, "+", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("want 3 '+' separated parts, got %d", len(parts))
	}
	name, hash16, key64 := parts[0], parts[1], parts[2]
	if !isValidName(name) {
		return nil, errVerifierID
	}
	key, err := base64.StdEncoding.DecodeString(key64)
	if err != nil {
		return nil, fmt.Errorf("invalid key material: %w", err)
	}
	if len(key) == 0 || key[0] != algECDSA {
		return nil, errVerifierAlg
	}
	hb, err := hex.DecodeString(hash16)
	if err != nil || len(hb) != 4 {
		return nil, errVerifierHash
	}
	pk, err := x509.ParsePKIXPublicKey(key[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	pubK, ok := pk.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("key is a %T, not ECDSA", pk)
	}
	v, err := newECDSAVerifier(name, pubK)
	if err != nil {
		return nil, err
	}
	if v.KeyHash() != binary.BigEndian.Uint32(hb) {
		return nil, errVerifierHash
	}
	return v, nil
}

var (
	errVerifierID   = errors.New("malformed verifier id")
	errVerifierAlg  = errors.New("unknown verifier algorithm")
	errVerifierHash = errors.New("invalid verifier hash")
)

// ecdsaVerifier is a note-compatible verifier for ECDSA signatures.
type ecdsaVerifier struct {
	name    string
	keyHash uint32
	v       func(msg, sig []byte) bool
}

func (e *ecdsaVerifier) Name() string               { return e.name }
func (e *ecdsaVerifier) KeyHash() uint32            { return e.keyHash }
func (e *ecdsaVerifier) Verify(msg, sig []byte) bool { return e.v(msg, sig) }

// newECDSAVerifier checks signatures over SHA256 digests. Unlike Ed25519
// note keys, the keyhash does not include the key name in its preimage.
func newECDSAVerifier(name string, pubK *ecdsa.PublicKey) (note.Verifier, error) {
	kh, err := ecdsaKeyHash(pubK)
	if err != nil {
		return nil, err
	}
	return &ecdsaVerifier{
		name: name,
		v: func(msg, sig []byte) bool {
			dgst := sha256.Sum256(msg)
			return ecdsa.VerifyASN1(pubK, dgst[:], sig)
		},
		keyHash: kh,
	}, nil
}

func ecdsaKeyHash(pubK *ecdsa.PublicKey) (uint32, error) {
	spki, err := x509.MarshalPKIXPublicKey(pubK)
	if err != nil {
		return 0, err
	}
	kh := sha256.Sum256(spki)
	return binary.BigEndian.Uint32(kh[:]), nil
}
