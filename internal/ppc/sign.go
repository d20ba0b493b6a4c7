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

package ppc

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/mod/sumdb/note"
)

// ImageText is the note body which commits to img.
func ImageText(img []byte) string {
	return fmt.Sprintf("%x\n", sha256.Sum256(img))
}

// SignImage returns a signature note for img.
func SignImage(img []byte, s note.Signer) ([]byte, error) {
	return note.Sign(&note.Note{Text: ImageText(img)}, s)
}

// VerifyImage checks that sig is a note signed by v which commits to img.
func VerifyImage(img, sig []byte, v note.Verifier) error {
	n, err := note.Open(sig, note.VerifierList(v))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if n.Text != ImageText(img) {
		return fmt.Errorf("%w: image hash mismatch", ErrBadSignature)
	}
	return nil
}
