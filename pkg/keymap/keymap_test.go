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

package keymap

import "testing"

func TestLookupKeyAliases(t *testing.T) {
	tests := []struct {
		name     string
		expected Keycode
	}{
		{"GUI", KeyLeftGUI},
		{"WINDOWS", KeyLeftGUI},
		{"COMMAND", KeyLeftGUI},
		{"RGUI", KeyRightGUI},
		{"CTRL", KeyLeftControl},
		{"CONTROL", KeyLeftControl},
		{"OPTION", KeyLeftAlt},
		{"APP", KeyApplication},
		{"MENU", KeyApplication},
		{"ESC", KeyEscape},
		{"ESCAPE", KeyEscape},
		{"UP", KeyUpArrow},
		{"UPARROW", KeyUpArrow},
		{"BREAK", KeyPause},
		{"F24", KeyF24},
		{"Z", KeyZ},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, ok := LookupKey(test.name)
			if !ok {
				t.Fatalf("Expected %s to resolve", test.name)
			}
			if code != test.expected {
				t.Errorf("Expected 0x%02X, got 0x%02X", test.expected, code)
			}
		})
	}
}

func TestLookupKeyUnknown(t *testing.T) {
	if _, ok := LookupKey("NOT_A_KEY"); ok {
		t.Errorf("Expected NOT_A_KEY to be unresolved")
	}

	// LookupKey must not reach the consumer or extended tables
	if _, ok := LookupKey("MK_MUTE"); ok {
		t.Errorf("Expected MK_MUTE to be unresolved via LookupKey")
	}
	if _, ok := LookupKey("KEYPAD_PLUS"); ok {
		t.Errorf("Expected KEYPAD_PLUS to be unresolved via LookupKey")
	}
}

func TestLookupConsumer(t *testing.T) {
	tests := []struct {
		name     string
		expected ConsumerCode
	}{
		{"MK_VOLUP", ConsumerVolumeIncrement},
		{"MK_VOLDOWN", ConsumerVolumeDecrement},
		{"MK_MUTE", ConsumerMute},
		{"MK_NEXT", ConsumerScanNextTrack},
		{"MK_PREV", ConsumerScanPrevTrack},
		{"MK_PP", ConsumerPlayPause},
		{"MK_STOP", ConsumerStop},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, ok := LookupConsumer(test.name)
			if !ok {
				t.Fatalf("Expected %s to resolve", test.name)
			}
			if code != test.expected {
				t.Errorf("Expected 0x%02X, got 0x%02X", test.expected, code)
			}
		})
	}
}

func TestResolveOrder(t *testing.T) {
	// Primary table wins
	code, ok := Resolve("ENTER")
	if !ok || code.Kind != KindKeyboard || code.Key != KeyEnter {
		t.Errorf("Expected ENTER to resolve to the keyboard page, got %+v", code)
	}

	// Consumer table before the extended table
	code, ok = Resolve("MK_PP")
	if !ok || code.Kind != KindConsumer || code.Consumer != ConsumerPlayPause {
		t.Errorf("Expected MK_PP to resolve to the consumer page, got %+v", code)
	}

	// Extended table as last resort
	code, ok = Resolve("KEYPAD_ENTER")
	if !ok || code.Kind != KindKeyboard || code.Key != KeypadEnter {
		t.Errorf("Expected KEYPAD_ENTER to resolve via the extended table, got %+v", code)
	}

	if _, ok := Resolve("FOO"); ok {
		t.Errorf("Expected FOO to be unresolved")
	}
}
