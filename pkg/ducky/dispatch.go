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

// Package ducky implements the Ducky Script interpreter: lexical
// classification, variable/macro substitution, a restricted expression
// evaluator, nested control flow and the blocking timing model that ties
// statements to keystroke side effects.
package ducky

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	cmn "github.com/pzaino/theducker/pkg/common"
	"github.com/pzaino/theducker/pkg/hid"
	ckm "github.com/pzaino/theducker/pkg/keymap"
)

var (
	delayPattern   = regexp.MustCompile(`^DELAY\s*(\d+)`)
	varDeclPattern = regexp.MustCompile(`^VAR\s+\$(\w+)\s*=\s*(.+)$`)
	assignPattern  = regexp.MustCompile(`^\$(\w+)\s*=\s*(.+)$`)
)

// DefaultMaxCallDepth caps FUNCTION call nesting when no explicit limit
// is configured.
const DefaultMaxCallDepth = 100

// Interpreter dispatches script statements against an emitter. It is
// single-threaded and fully cooperative: every statement, delays
// included, blocks until done or until the context is canceled.
type Interpreter struct {
	state *State
	emit  hid.Emitter

	// sleep is the blocking wait primitive, replaceable in tests
	sleep func(ctx context.Context, d time.Duration) error

	maxCallDepth int
	callDepth    int
}

// NewInterpreter returns an Interpreter over the given state and emitter.
func NewInterpreter(state *State, emitter hid.Emitter) *Interpreter {
	return &Interpreter{
		state:        state,
		emit:         emitter,
		sleep:        sleepWithContext,
		maxCallDepth: DefaultMaxCallDepth,
	}
}

// SetMaxCallDepth overrides the FUNCTION call depth cap.
func (it *Interpreter) SetMaxCallDepth(depth int) {
	if depth > 0 {
		it.maxCallDepth = depth
	}
}

// State returns the interpreter state.
func (it *Interpreter) State() *State {
	return it.state
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pause blocks for the given duration, honoring cancellation.
func (it *Interpreter) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return it.sleep(ctx, d)
}

// rest returns the line past byte offset n, empty when the line is shorter.
func rest(line string, n int) string {
	if len(line) <= n {
		return ""
	}
	return line[n:]
}

// ExecLine classifies one line by keyword prefix and executes it, pulling
// extra lines from the cursor for block constructs. Keyword checks run in
// the same priority order as the reference firmware.
func (it *Interpreter) ExecLine(ctx context.Context, raw string, cur *Cursor) error {
	line := strings.TrimSpace(raw)

	// live variables are recomputed on every reference, then macro
	// substitution runs before keyword classification
	line = it.state.SubstituteLive(line)
	line = it.state.ApplyDefines(line)

	switch {
	case line == "":
		return nil

	case strings.HasPrefix(line, "INJECT_MOD"):
		// compatibility no-op, the line is consumed with no effect
		cmn.DebugMsg(cmn.DbgLvlDebug, "Ignoring INJECT_MOD line: %s", line)

	case strings.HasPrefix(line, "REM_BLOCK"):
		return it.skipRemBlock(cur)

	case strings.HasPrefix(line, "REM"):
		// single-line comment

	case strings.HasPrefix(line, "HOLD"):
		it.execHold(rest(line, 5))

	case strings.HasPrefix(line, "RELEASE"):
		it.execRelease(rest(line, 8))

	case strings.HasPrefix(line, "DELAY"):
		return it.execDelay(ctx, line)

	case line == "STRINGLN":
		return it.execStringBlock(cur, true)

	case strings.HasPrefix(line, "STRINGLN"):
		it.typeText(it.state.SubstituteVars(rest(line, 9)), true)

	case line == "STRING":
		return it.execStringBlock(cur, false)

	case strings.HasPrefix(line, "STRING"):
		it.typeText(it.state.SubstituteVars(rest(line, 7)), false)

	case strings.HasPrefix(line, "PRINT"):
		cmn.DiagMsg("[SCRIPT]: %s", it.state.SubstituteVars(rest(line, 6)))

	case strings.HasPrefix(line, "IMPORT"):
		// file imports are not supported in in-memory mode

	case strings.HasPrefix(line, "DEFAULT_DELAY"):
		return it.execDefaultDelay(line, rest(line, 14))

	case strings.HasPrefix(line, "DEFAULTDELAY"):
		return it.execDefaultDelay(line, rest(line, 13))

	case strings.HasPrefix(line, "LED"):
		// LED control is not available on this transport

	case strings.HasPrefix(line, "WAIT_FOR_BUTTON_PRESS"):
		// no button on this transport

	case strings.HasPrefix(line, "VAR"):
		return it.execVarDecl(line)

	case strings.HasPrefix(line, "$"):
		return it.execAssign(line)

	case strings.HasPrefix(line, "DEFINE"):
		return it.execDefine(line)

	case strings.HasPrefix(line, "FUNCTION"):
		return it.execFunctionDef(line, cur)

	case strings.HasPrefix(line, "WHILE"):
		return it.execWhile(ctx, line, cur)

	case strings.HasPrefix(strings.ToUpper(line), "IF"):
		// conditional branching is unsupported in this profile, parsed and inert
		cmn.DebugMsg(cmn.DbgLvlDebug, "IF is not supported, ignoring: %s", line)

	case strings.HasPrefix(strings.ToUpper(line), "END_IF"):
		// inert, see IF

	case line == "RANDOM_LOWERCASE_LETTER":
		it.typeRandom(lowercaseLetters, 1)

	case line == "RANDOM_UPPERCASE_LETTER":
		it.typeRandom(uppercaseLetters, 1)

	case line == "RANDOM_LETTER":
		it.typeRandom(lowercaseLetters+uppercaseLetters, 1)

	case line == "RANDOM_NUMBER":
		it.typeRandom(numberChars, 1)

	case line == "RANDOM_SPECIAL":
		it.typeRandom(specialChars, 1)

	case line == "RANDOM_CHAR":
		it.typeRandom(lowercaseLetters+uppercaseLetters+numberChars+specialChars, 1)

	case line == "VID_RANDOM", line == "PID_RANDOM":
		it.typeRandom(hexChars, 4)

	case line == "MAN_RANDOM", line == "PROD_RANDOM":
		it.typeRandom(lowercaseLetters+uppercaseLetters+numberChars, 12)

	case line == "SERIAL_RANDOM":
		it.typeRandom(lowercaseLetters+uppercaseLetters+numberChars+specialChars, 12)

	case line == "RESET":
		// release every held key, tables are untouched
		it.emit.ReleaseAll()

	default:
		if body, ok := it.state.Function(line); ok {
			return it.execFunctionCall(ctx, line, body)
		}
		it.execCombo(line)
	}

	return nil
}

// skipRemBlock pulls lines until the END_REM terminator.
func (it *Interpreter) skipRemBlock(cur *Cursor) error {
	for {
		raw, ok := cur.Next()
		if !ok {
			return &UnterminatedBlockError{Keyword: "REM_BLOCK"}
		}
		if strings.HasPrefix(strings.TrimSpace(raw), "END_REM") {
			return nil
		}
	}
}

func (it *Interpreter) execHold(arg string) {
	key := strings.ToUpper(strings.TrimSpace(arg))
	if code, ok := ckm.LookupKey(key); ok {
		it.emit.PressKey(code)
		return
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Unknown key to HOLD: <%s>", key)
}

func (it *Interpreter) execRelease(arg string) {
	key := strings.ToUpper(strings.TrimSpace(arg))
	if code, ok := ckm.LookupKey(key); ok {
		it.emit.ReleaseKey(code)
		return
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Unknown key to RELEASE: <%s>", key)
}

// execDelay handles explicit delays. Whitespace between the keyword and
// the digits is optional: DELAY300 and DELAY 300 are the same statement.
func (it *Interpreter) execDelay(ctx context.Context, line string) error {
	match := delayPattern.FindStringSubmatch(line)
	if match == nil {
		cmn.DebugMsg(cmn.DbgLvlDebug, "Malformed DELAY, ignoring: %s", line)
		return nil
	}
	ms, err := strconv.Atoi(match[1])
	if err != nil {
		return &SyntaxError{Line: line, Reason: "invalid DELAY value"}
	}
	return it.pause(ctx, time.Duration(ms)*time.Millisecond)
}

// execStringBlock types each pulled line until the END_STRING /
// END_STRINGLN terminator, which itself is never typed.
func (it *Interpreter) execStringBlock(cur *Cursor, withEnter bool) error {
	keyword, terminator := "STRING", "END_STRING"
	if withEnter {
		keyword, terminator = "STRINGLN", "END_STRINGLN"
	}

	for {
		raw, ok := cur.Next()
		if !ok {
			return &UnterminatedBlockError{Keyword: keyword}
		}
		line := strings.TrimSpace(raw)
		line = it.state.SubstituteVars(line)
		line = it.state.ApplyDefines(line)
		if strings.HasPrefix(line, terminator) {
			return nil
		}
		it.typeText(line, withEnter)
	}
}

// typeText writes a string through the layout-aware primitive, pressing
// ENTER afterwards for STRINGLN semantics.
func (it *Interpreter) typeText(text string, withEnter bool) {
	it.emit.Write(text)
	if withEnter {
		it.emit.PressKey(ckm.KeyEnter)
		it.emit.ReleaseKey(ckm.KeyEnter)
	}
}

// execDefaultDelay sets the timing governor's default inter-statement
// pause. The supplied unit is scaled by 10 into milliseconds.
func (it *Interpreter) execDefaultDelay(line, arg string) error {
	value, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return &SyntaxError{Line: line, Reason: "invalid DEFAULT_DELAY value"}
	}
	it.state.DefaultDelay = time.Duration(value*10) * time.Millisecond
	return nil
}

// execVarDecl handles `VAR $name = expr`. A malformed declaration is
// fatal to the pass, a failing expression only fails this statement.
func (it *Interpreter) execVarDecl(line string) error {
	match := varDeclPattern.FindStringSubmatch(line)
	if match == nil {
		return &SyntaxError{Line: line, Reason: "invalid variable declaration"}
	}
	value, err := it.state.Evaluate(match[2])
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlInfo, "Skipping statement: %v", err)
		return nil
	}
	it.state.SetVar("$"+match[1], value)
	return nil
}

// execAssign handles `$name = expr`. Variables are auto-declared on first
// assignment, matching the reference firmware.
func (it *Interpreter) execAssign(line string) error {
	match := assignPattern.FindStringSubmatch(line)
	if match == nil {
		return &SyntaxError{Line: line, Reason: "invalid variable update"}
	}
	value, err := it.state.Evaluate(match[2])
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlInfo, "Skipping statement: %v", err)
		return nil
	}
	it.state.SetVar("$"+match[1], value)
	return nil
}

// execDefine installs a macro applied to every subsequent line.
func (it *Interpreter) execDefine(line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return &SyntaxError{Line: line, Reason: "invalid DEFINE, expected DEFINE <name> <text>"}
	}
	it.state.AddDefine(parts[1], parts[2])
	return nil
}

// execFunctionDef captures lines verbatim, no substitution yet, until a
// line equal to END_FUNCTION.
func (it *Interpreter) execFunctionDef(line string, cur *Cursor) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return &SyntaxError{Line: line, Reason: "invalid FUNCTION, expected FUNCTION <name>"}
	}
	name := fields[1]

	var body []string
	for {
		raw, ok := cur.Next()
		if !ok {
			return &UnterminatedBlockError{Keyword: "FUNCTION"}
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "END_FUNCTION" {
			break
		}
		body = append(body, trimmed)
	}

	it.state.SetFunction(name, body)
	return nil
}

// execFunctionCall re-interprets a captured body against a fresh cursor.
// There is no call-local scope: variable mutations persist across and
// within calls. Call depth is capped so a self-referential function fails
// cleanly instead of exhausting resources.
func (it *Interpreter) execFunctionCall(ctx context.Context, name string, body []string) error {
	if it.callDepth >= it.maxCallDepth {
		return fmt.Errorf("calling %q: %w", name, ErrMaxCallDepth)
	}
	it.callDepth++
	defer func() { it.callDepth-- }()

	cur := NewCursor(body)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := cur.Next()
		if !ok {
			return nil
		}
		if err := it.ExecLine(ctx, line, cur); err != nil {
			return err
		}
	}
}

// execWhile captures the loop body without executing it, tracking nested
// WHILE/END_WHILE via a depth counter, then re-evaluates the condition
// before every iteration. A false initial condition runs the body zero
// times.
func (it *Interpreter) execWhile(ctx context.Context, line string, cur *Cursor) error {
	condition := strings.TrimSpace(rest(line, 5))

	var body []string
	depth := 1
	for {
		raw, ok := cur.Next()
		if !ok {
			return &UnterminatedBlockError{Keyword: "WHILE"}
		}
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(strings.ToUpper(trimmed), "WHILE") {
			depth++
		} else if strings.HasPrefix(strings.ToUpper(trimmed), "END_WHILE") {
			depth--
			if depth == 0 {
				break
			}
		}
		body = append(body, trimmed)
	}

	for {
		proceed, err := it.state.EvaluateBool(condition)
		if err != nil {
			// a failing condition fails the loop statement, not the pass
			cmn.DebugMsg(cmn.DbgLvlInfo, "Skipping WHILE loop: %v", err)
			return nil
		}
		if !proceed {
			return nil
		}

		bodyCur := NewCursor(body)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			bodyLine, ok := bodyCur.Next()
			if !ok {
				break
			}
			if err := it.ExecLine(ctx, bodyLine, bodyCur); err != nil {
				return err
			}
		}
	}
}

// execCombo treats an unrecognized line as a space-separated list of
// symbolic key names: press all left-to-right, release all in exact
// reverse order. Unresolved tokens are logged and skipped without
// aborting the statement.
func (it *Interpreter) execCombo(line string) {
	var codes []ckm.Code
	for _, token := range strings.Fields(line) {
		token = strings.ToUpper(token)
		code, ok := ckm.Resolve(token)
		if !ok {
			cmn.DebugMsg(cmn.DbgLvlInfo, "Unknown key: <%s>", token)
			continue
		}
		codes = append(codes, code)
	}

	for _, code := range codes {
		if code.Kind == ckm.KindConsumer {
			it.emit.PressConsumer(code.Consumer)
		} else {
			it.emit.PressKey(code.Key)
		}
	}
	for i := len(codes) - 1; i >= 0; i-- {
		if codes[i].Kind == ckm.KindConsumer {
			it.emit.ReleaseConsumer()
		} else {
			it.emit.ReleaseKey(codes[i].Key)
		}
	}
}
