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
	cmn "github.com/pzaino/theducker/pkg/common"
	ckm "github.com/pzaino/theducker/pkg/keymap"
)

// Console is an Emitter that renders events to the diagnostic sink. It is
// the development-mode emitter for hosts without a HID gadget.
type Console struct{}

// PressKey renders a keyboard key press
func (Console) PressKey(code ckm.Keycode) {
	cmn.DiagMsg("[HID]: press 0x%02X", uint8(code))
}

// ReleaseKey renders a keyboard key release
func (Console) ReleaseKey(code ckm.Keycode) {
	cmn.DiagMsg("[HID]: release 0x%02X", uint8(code))
}

// ReleaseAll renders a release of every held key
func (Console) ReleaseAll() {
	cmn.DiagMsg("[HID]: release all")
}

// PressConsumer renders a consumer-control key press
func (Console) PressConsumer(code ckm.ConsumerCode) {
	cmn.DiagMsg("[HID]: consumer press 0x%03X", uint16(code))
}

// ReleaseConsumer renders a consumer-control key release
func (Console) ReleaseConsumer() {
	cmn.DiagMsg("[HID]: consumer release")
}

// Write renders a typed string
func (Console) Write(text string) {
	cmn.DiagMsg("[HID]: type %q", text)
}
