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

package storage

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Dir serves files from a directory on the host, standing in for the SD card
// when running under the emulator.
type Dir struct {
	Root string

	fsys fs.FS
}

// Init checks that the directory exists.
func (d *Dir) Init() error {
	fi, err := os.Stat(d.Root)
	if err != nil {
		return fmt.Errorf("no card: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("no card: %q is not a directory", d.Root)
	}
	return nil
}

// Mount makes the directory's files available to ReadAll.
func (d *Dir) Mount() error {
	if err := d.Init(); err != nil {
		return err
	}
	d.fsys = os.DirFS(d.Root)
	return nil
}

// ReadAll implements FS. Paths are rooted at the directory.
func (d *Dir) ReadAll(path string) ([]byte, error) {
	if d.fsys == nil {
		return nil, ErrNotMounted
	}
	return fs.ReadFile(d.fsys, strings.TrimPrefix(path, "/"))
}
