// Copyright 2023 Paolo Fabio Zaino
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

package ducky

import (
	"errors"
	"fmt"
)

// ErrMaxCallDepth is returned when FUNCTION calls nest deeper than the
// configured limit. A self-referential function hits this instead of
// exhausting the stack.
var ErrMaxCallDepth = errors.New("maximum function call depth exceeded")

// SyntaxError is a fatal statement parse failure. It aborts the current
// pass; interpreter tables modified so far are not rolled back.
type SyntaxError struct {
	Line   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s: %s", e.Reason, e.Line)
}

// UnterminatedBlockError is returned when a block construct runs out of
// script lines before its terminator.
type UnterminatedBlockError struct {
	Keyword string
}

func (e *UnterminatedBlockError) Error() string {
	return fmt.Sprintf("unterminated %s block: script ended before the terminator", e.Keyword)
}
