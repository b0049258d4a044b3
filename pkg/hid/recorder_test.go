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

package hid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	ckm "github.com/pzaino/theducker/pkg/keymap"
)

func TestRecorderEvents(t *testing.T) {
	rec := NewRecorder()
	rec.PressKey(ckm.KeyLeftShift)
	rec.Write("hi")
	rec.ReleaseKey(ckm.KeyLeftShift)
	rec.PressConsumer(ckm.ConsumerPlayPause)
	rec.ReleaseConsumer()

	want := []Event{
		{Kind: EvKeyPress, Key: ckm.KeyLeftShift},
		{Kind: EvWrite, Text: "hi"},
		{Kind: EvKeyRelease, Key: ckm.KeyLeftShift},
		{Kind: EvConsumerPress, Consumer: ckm.ConsumerPlayPause},
		{Kind: EvConsumerRelease},
	}
	if diff := cmp.Diff(want, rec.Events()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if got := rec.Typed(); got != "hi" {
		t.Errorf("Typed() = %q, want %q", got, "hi")
	}
}

func TestRecorderHeld(t *testing.T) {
	rec := NewRecorder()
	rec.PressKey(ckm.KeyLeftControl)
	rec.PressKey(ckm.KeyC)
	rec.ReleaseKey(ckm.KeyC)

	if got := rec.Held(); len(got) != 1 || got[0] != ckm.KeyLeftControl {
		t.Errorf("Held() = %v, want [KeyLeftControl]", got)
	}

	rec.ReleaseAll()
	if got := rec.Held(); len(got) != 0 {
		t.Errorf("Held() after ReleaseAll = %v, want empty", got)
	}
}

func TestRecorderReset(t *testing.T) {
	rec := NewRecorder()
	rec.Write("x")
	rec.PressKey(ckm.KeyA)
	rec.Reset()

	if len(rec.Events()) != 0 || len(rec.Held()) != 0 {
		t.Error("Reset did not clear recorder state")
	}
}
