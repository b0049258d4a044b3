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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pzaino/theducker/pkg/hid"
	ckm "github.com/pzaino/theducker/pkg/keymap"
)

func TestRepeatRunsPreviousStatement(t *testing.T) {
	r, rec, sleeps := newTestRunner()
	run(t, r, "DEFAULT_DELAY 30\nSTRING hi\nREPEAT 3")

	// 1 original + 3 repeats
	if rec.Typed() != "hihihihi" {
		t.Errorf("Expected hi typed 4 times, got %q", rec.Typed())
	}

	// default delay observed after every top-level statement plus after
	// each repetition: DEFAULT_DELAY, STRING, 3 repeats, REPEAT itself
	if len(*sleeps) != 6 {
		t.Fatalf("Expected 6 default-delay pauses, got %d (%v)", len(*sleeps), *sleeps)
	}
	for _, d := range *sleeps {
		if d != 300*time.Millisecond {
			t.Errorf("Expected every pause to be 300ms (unit scaled by 10), got %v", d)
		}
	}
}

func TestRepeatWithoutPreviousStatement(t *testing.T) {
	r, rec, _ := newTestRunner()
	run(t, r, "REPEAT 2\nSTRING after")

	// nothing to repeat, the pass continues
	if rec.Typed() != "after" {
		t.Errorf("Expected an empty repeat to be harmless, typed %q", rec.Typed())
	}
}

func TestRepeatMalformedCount(t *testing.T) {
	r, _, _ := newTestRunner()
	err := r.Run(context.Background(), "STRING hi\nREPEAT x")

	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Expected SyntaxError for a malformed REPEAT, got %v", err)
	}
}

func TestStopPayload(t *testing.T) {
	r, rec, _ := newTestRunner()
	run(t, r, "STRING a\nSTOP_PAYLOAD\nSTRING b")

	if rec.Typed() != "a" {
		t.Errorf("Expected the pass to end at STOP_PAYLOAD, typed %q", rec.Typed())
	}
}

// restartCanceller cancels the run after a fixed number of typed strings,
// so a script that restarts unconditionally still terminates.
type restartCanceller struct {
	*hid.Recorder
	remaining int
	cancel    context.CancelFunc
}

func (rc *restartCanceller) Write(text string) {
	rc.Recorder.Write(text)
	rc.remaining--
	if rc.remaining == 0 {
		rc.cancel()
	}
}

func TestRestartPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &restartCanceller{Recorder: hid.NewRecorder(), remaining: 3, cancel: cancel}

	it := NewInterpreter(NewState(), rec)
	it.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	r := NewRunner(it)

	err := r.Run(ctx, "STRING a\nRESTART_PAYLOAD\nSTRING never")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected the canceled restart loop to report context.Canceled, got %v", err)
	}

	// each pass types a then restarts from line 1, b is unreachable
	if rec.Typed() != "aaa" {
		t.Errorf("Expected three restarted passes, typed %q", rec.Typed())
	}
}

func TestVariablesPersistAcrossRestart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &restartCanceller{Recorder: hid.NewRecorder(), remaining: 3, cancel: cancel}

	it := NewInterpreter(NewState(), rec)
	it.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	r := NewRunner(it)

	// $n survives RESTART_PAYLOAD, the table lives on the state not the pass
	err := r.Run(ctx, "$n = $n + 1\nSTRING $n\nRESTART_PAYLOAD")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if rec.Typed() != "123" {
		t.Errorf("Expected the counter to persist across restarts, typed %q", rec.Typed())
	}
}

func TestCommentsAndBlankLines(t *testing.T) {
	r, rec, sleeps := newTestRunner()
	script := strings.Join([]string{
		"DEFAULT_DELAY 10",
		"",
		"# a full-line comment",
		"STRING hi # trailing comment",
		"   ",
	}, "\n")
	run(t, r, script)

	if rec.Typed() != "hi" {
		t.Errorf("Expected the comment to be stripped, typed %q", rec.Typed())
	}

	// blank and comment-only lines are skipped with no delay charged
	if len(*sleeps) != 2 {
		t.Errorf("Expected pauses only for the 2 real statements, got %d", len(*sleeps))
	}
}

func TestRunLeavesHeldKeysOnNormalEnd(t *testing.T) {
	r, rec, _ := newTestRunner()
	run(t, r, "HOLD SHIFT")

	// RESET is opt-in, a normal end does not auto-release
	held := rec.Held()
	if len(held) != 1 || held[0] != ckm.KeyLeftShift {
		t.Errorf("Expected SHIFT to remain held after a normal pass, got %v", held)
	}
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"STRING hi # note", "STRING hi"},
		{"# whole line", ""},
		{"   DELAY 10   ", "DELAY 10"},
		{"", ""},
	}

	for _, test := range tests {
		if got := stripComment(test.line); got != test.expected {
			t.Errorf("stripComment(%q): expected %q, got %q", test.line, test.expected, got)
		}
	}
}
