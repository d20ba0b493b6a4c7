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

package impl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/starlet-mini/internal/keys"
	"github.com/google/starlet-mini/internal/ppc"
)

func writeImage(t *testing.T, dir string, b []byte) string {
	t.Helper()
	p := filepath.Join(dir, "openbios.elf")
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSignAndVerify(t *testing.T) {
	for _, kType := range []string{keys.Ed25519, keys.ECDSA} {
		t.Run(kType, func(t *testing.T) {
			dir := t.TempDir()
			priv, pub := filepath.Join(dir, "key.priv"), filepath.Join(dir, "key.pub")
			if err := GenerateKeys(KeyOpts{Type: kType, Name: "starlet", OutPriv: priv, OutPub: pub}); err != nil {
				t.Fatalf("GenerateKeys(): %v", err)
			}
			img := writeImage(t, dir, []byte("image contents"))

			sig, err := Sign(SignOpts{PrivKeyFile: priv, ImagePath: img})
			if err != nil {
				t.Fatalf("Sign(): %v", err)
			}
			if want := img + ".sig"; sig != want {
				t.Errorf("Sign() wrote %q, want %q", sig, want)
			}
			if err := Verify(kType, pub, img); err != nil {
				t.Errorf("Verify(): %v", err)
			}

			// Swap the image out from under the signature.
			writeImage(t, dir, []byte("something else"))
			if err := Verify(kType, pub, img); !errors.Is(err, ppc.ErrBadSignature) {
				t.Errorf("Verify() after tampering = %v, want ErrBadSignature", err)
			}
		})
	}
}

func TestGenerateKeysDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	priv, pub := filepath.Join(dir, "key.priv"), filepath.Join(dir, "key.pub")
	if err := os.WriteFile(priv, []byte("precious"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := GenerateKeys(KeyOpts{Name: "starlet", OutPriv: priv, OutPub: pub}); err == nil {
		t.Fatal("GenerateKeys() overwrote an existing key")
	}
	b, err := os.ReadFile(priv)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "precious" {
		t.Errorf("private key file now holds %q", b)
	}
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, []byte("image"))
	bogus := filepath.Join(dir, "bogus.key")
	if err := os.WriteFile(bogus, []byte("not a key\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, test := range []struct {
		desc string
		f    func() error
	}{
		{desc: "no key name", f: func() error {
			return GenerateKeys(KeyOpts{OutPriv: filepath.Join(dir, "a"), OutPub: filepath.Join(dir, "b")})
		}},
		{desc: "missing private key", f: func() error {
			_, err := Sign(SignOpts{PrivKeyFile: filepath.Join(dir, "missing"), ImagePath: img})
			return err
		}},
		{desc: "bad private key", f: func() error {
			_, err := Sign(SignOpts{PrivKeyFile: bogus, ImagePath: img})
			return err
		}},
		{desc: "unknown key type", f: func() error {
			return GenerateKeys(KeyOpts{Type: "rsa", Name: "starlet", OutPriv: filepath.Join(dir, "c"), OutPub: filepath.Join(dir, "d")})
		}},
		{desc: "bad public key", f: func() error {
			return Verify(keys.Ed25519, bogus, img)
		}},
	} {
		t.Run(test.desc, func(t *testing.T) {
			if err := test.f(); err == nil {
				t.Error("succeeded")
			}
		})
	}
}
