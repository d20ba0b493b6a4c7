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

package boot

import (
	"fmt"

	"github.com/google/starlet-mini/internal/halt"
)

// FatalError is a boot failure with no fallback. The Starlet must stop and
// show Pattern.
type FatalError struct {
	Stage   string
	Pattern halt.Pattern
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed (panic %v): %v", e.Stage, e.Pattern, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
