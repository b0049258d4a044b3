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

import "strings"

// Cursor is a peekable iterator over script lines. Block constructs pull
// their body lines through it, the runner restarts it for REPEAT and
// RESTART_PAYLOAD semantics.
type Cursor struct {
	lines []string
	pos   int
}

// NewCursor returns a Cursor over the given lines.
func NewCursor(lines []string) *Cursor {
	return &Cursor{lines: lines}
}

// Next returns the next line and advances. The second return value is
// false once the cursor is exhausted.
func (c *Cursor) Next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

// Peek returns the next line without advancing.
func (c *Cursor) Peek() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

// Restart rewinds the cursor to the first line.
func (c *Cursor) Restart() {
	c.pos = 0
}

// Remaining returns how many lines are left.
func (c *Cursor) Remaining() int {
	return len(c.lines) - c.pos
}

// SplitScript splits raw script text into lines. Lines are kept verbatim
// except for a trailing carriage return, trimming is the dispatcher's job.
func SplitScript(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
