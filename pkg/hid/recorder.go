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
	"strings"
	"sync"

	ckm "github.com/pzaino/theducker/pkg/keymap"
)

// EventKind is an enum for recorded emitter events
type EventKind int

const (
	// EvKeyPress is a keyboard key press
	EvKeyPress EventKind = iota
	// EvKeyRelease is a keyboard key release
	EvKeyRelease
	// EvReleaseAll is a release of every held key
	EvReleaseAll
	// EvConsumerPress is a consumer-control key press
	EvConsumerPress
	// EvConsumerRelease is a consumer-control key release
	EvConsumerRelease
	// EvWrite is a typed string
	EvWrite
)

// Event is one recorded emitter action.
type Event struct {
	Kind     EventKind
	Key      ckm.Keycode
	Consumer ckm.ConsumerCode
	Text     string
}

// Recorder is an Emitter that records events instead of injecting them.
// It backs dry runs and the test suite.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	held   map[ckm.Keycode]bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{held: make(map[ckm.Keycode]bool)}
}

// PressKey records a keyboard key press
func (r *Recorder) PressKey(code ckm.Keycode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EvKeyPress, Key: code})
	r.held[code] = true
}

// ReleaseKey records a keyboard key release
func (r *Recorder) ReleaseKey(code ckm.Keycode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EvKeyRelease, Key: code})
	delete(r.held, code)
}

// ReleaseAll records a release of every held key
func (r *Recorder) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EvReleaseAll})
	r.held = make(map[ckm.Keycode]bool)
}

// PressConsumer records a consumer-control key press
func (r *Recorder) PressConsumer(code ckm.ConsumerCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EvConsumerPress, Consumer: code})
}

// ReleaseConsumer records a consumer-control key release
func (r *Recorder) ReleaseConsumer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EvConsumerRelease})
}

// Write records a typed string
func (r *Recorder) Write(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EvWrite, Text: text})
}

// Events returns a copy of the recorded event list.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Typed returns the concatenation of everything written via Write.
func (r *Recorder) Typed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sb strings.Builder
	for _, ev := range r.events {
		if ev.Kind == EvWrite {
			sb.WriteString(ev.Text)
		}
	}
	return sb.String()
}

// Held returns the keys currently recorded as pressed and not released.
func (r *Recorder) Held() []ckm.Keycode {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ckm.Keycode, 0, len(r.held))
	for code := range r.held {
		out = append(out, code)
	}
	return out
}

// Reset discards all recorded events and held-key state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.held = make(map[ckm.Keycode]bool)
}
