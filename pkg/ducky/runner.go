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
	"context"
	"regexp"
	"strconv"
	"strings"
)

var repeatPattern = regexp.MustCompile(`^REPEAT\s*(\d+)`)

// Runner owns one full pass over a script: comment stripping, REPEAT of
// the previous top-level statement, RESTART_PAYLOAD / STOP_PAYLOAD
// semantics, and the default delay charged after every top-level
// statement.
type Runner struct {
	it *Interpreter

	// lastTopLevel is the statement REPEAT re-dispatches
	lastTopLevel string
}

// NewRunner returns a Runner over the given interpreter.
func NewRunner(it *Interpreter) *Runner {
	return &Runner{it: it}
}

// Interpreter returns the runner's interpreter.
func (r *Runner) Interpreter() *Interpreter {
	return r.it
}

// stripComment removes a trailing `#` comment and surrounding whitespace.
func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// Run executes one script. The script is owned exclusively by this pass
// and discarded when it ends or aborts. On any abnormal termination
// (syntax error, unterminated block, cancellation) every held key is
// released so the host keyboard is not left in a corrupted state.
func (r *Runner) Run(ctx context.Context, script string) (err error) {
	defer func() {
		if err != nil {
			r.it.emit.ReleaseAll()
		}
	}()

	cur := NewCursor(SplitScript(script))

	restart := true
	for restart {
		restart = false
		cur.Restart()
		r.lastTopLevel = ""

	pass:
		for {
			if err = ctx.Err(); err != nil {
				return err
			}

			raw, ok := cur.Next()
			if !ok {
				break
			}

			clean := stripComment(raw)
			if clean == "" {
				// blank lines are skipped with no delay charged
				continue
			}

			switch {
			case strings.HasPrefix(clean, "REPEAT"):
				if err = r.execRepeat(ctx, clean, cur); err != nil {
					return err
				}

			case strings.HasPrefix(clean, "RESTART_PAYLOAD"):
				restart = true
				break pass

			case strings.HasPrefix(clean, "STOP_PAYLOAD"):
				break pass

			default:
				if err = r.it.ExecLine(ctx, clean, cur); err != nil {
					return err
				}
				r.lastTopLevel = clean
			}

			// the timing governor charges the default delay after every
			// top-level statement, original or repeated
			if err = r.it.pause(ctx, r.it.state.DefaultDelay); err != nil {
				return err
			}
		}
	}

	return nil
}

// execRepeat re-dispatches the immediately preceding top-level statement
// n additional times, each followed by the default delay.
func (r *Runner) execRepeat(ctx context.Context, line string, cur *Cursor) error {
	match := repeatPattern.FindStringSubmatch(line)
	if match == nil {
		return &SyntaxError{Line: line, Reason: "invalid REPEAT count"}
	}
	count, err := strconv.Atoi(match[1])
	if err != nil {
		return &SyntaxError{Line: line, Reason: "invalid REPEAT count"}
	}

	for i := 0; i < count; i++ {
		if err := r.it.ExecLine(ctx, r.lastTopLevel, cur); err != nil {
			return err
		}
		if err := r.it.pause(ctx, r.it.state.DefaultDelay); err != nil {
			return err
		}
	}
	return nil
}
