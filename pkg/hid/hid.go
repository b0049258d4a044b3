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

// Package hid defines the keystroke/consumer-control emitter capability
// consumed by the interpreter. The engine owns the interface, not the
// hardware: a real USB/HID gadget implementation slots in behind Emitter
// without touching the interpreter.
package hid

import (
	ckm "github.com/pzaino/theducker/pkg/keymap"
)

// Keyboard presses and releases individual keyboard keys. Press order on
// combo statements is left-to-right as written, release order is the exact
// reverse, so implementations must not reorder events.
type Keyboard interface {
	// PressKey presses one keyboard key without releasing it
	PressKey(code ckm.Keycode)
	// ReleaseKey releases one keyboard key
	ReleaseKey(code ckm.Keycode)
	// ReleaseAll releases every currently held keyboard key
	ReleaseAll()
}

// Consumer drives consumer-control (media) keys.
type Consumer interface {
	// PressConsumer presses one consumer-control key
	PressConsumer(code ckm.ConsumerCode)
	// ReleaseConsumer releases the active consumer-control key
	ReleaseConsumer()
}

// Layout types whole strings through an OS/layout-aware primitive.
type Layout interface {
	Write(text string)
}

// Emitter is the full capability surface the interpreter drives.
type Emitter interface {
	Keyboard
	Consumer
	Layout
}
