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

// Package keymap maps the Ducky Script symbolic key vocabulary to USB HID
// usage IDs. Lookups go through the primary key table first, then the
// consumer-control table, then an extended keycode table that covers the
// rest of the HID keyboard page (punctuation, keypad keys).
package keymap

// Keycode is a USB HID keyboard page usage ID.
type Keycode uint8

// ConsumerCode is a USB HID consumer page usage ID.
type ConsumerCode uint16

// Keyboard page usage IDs used by the symbolic tables below.
const (
	KeyA Keycode = 0x04 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

const (
	KeyOne   Keycode = 0x1E
	KeyTwo   Keycode = 0x1F
	KeyThree Keycode = 0x20
	KeyFour  Keycode = 0x21
	KeyFive  Keycode = 0x22
	KeySix   Keycode = 0x23
	KeySeven Keycode = 0x24
	KeyEight Keycode = 0x25
	KeyNine  Keycode = 0x26
	KeyZero  Keycode = 0x27

	KeyEnter        Keycode = 0x28
	KeyEscape       Keycode = 0x29
	KeyBackspace    Keycode = 0x2A
	KeyTab          Keycode = 0x2B
	KeySpace        Keycode = 0x2C
	KeyMinus        Keycode = 0x2D
	KeyEquals       Keycode = 0x2E
	KeyLeftBracket  Keycode = 0x2F
	KeyRightBracket Keycode = 0x30
	KeyBackslash    Keycode = 0x31
	KeyPound        Keycode = 0x32
	KeySemicolon    Keycode = 0x33
	KeyQuote        Keycode = 0x34
	KeyGraveAccent  Keycode = 0x35
	KeyComma        Keycode = 0x36
	KeyPeriod       Keycode = 0x37
	KeyForwardSlash Keycode = 0x38
	KeyCapsLock     Keycode = 0x39

	KeyF1  Keycode = 0x3A
	KeyF2  Keycode = 0x3B
	KeyF3  Keycode = 0x3C
	KeyF4  Keycode = 0x3D
	KeyF5  Keycode = 0x3E
	KeyF6  Keycode = 0x3F
	KeyF7  Keycode = 0x40
	KeyF8  Keycode = 0x41
	KeyF9  Keycode = 0x42
	KeyF10 Keycode = 0x43
	KeyF11 Keycode = 0x44
	KeyF12 Keycode = 0x45

	KeyPrintScreen Keycode = 0x46
	KeyScrollLock  Keycode = 0x47
	KeyPause       Keycode = 0x48
	KeyInsert      Keycode = 0x49
	KeyHome        Keycode = 0x4A
	KeyPageUp      Keycode = 0x4B
	KeyDelete      Keycode = 0x4C
	KeyEnd         Keycode = 0x4D
	KeyPageDown    Keycode = 0x4E
	KeyRightArrow  Keycode = 0x4F
	KeyLeftArrow   Keycode = 0x50
	KeyDownArrow   Keycode = 0x51
	KeyUpArrow     Keycode = 0x52

	KeypadNumlock      Keycode = 0x53
	KeypadForwardSlash Keycode = 0x54
	KeypadAsterisk     Keycode = 0x55
	KeypadMinus        Keycode = 0x56
	KeypadPlus         Keycode = 0x57
	KeypadEnter        Keycode = 0x58
	KeypadOne          Keycode = 0x59
	KeypadTwo          Keycode = 0x5A
	KeypadThree        Keycode = 0x5B
	KeypadFour         Keycode = 0x5C
	KeypadFive         Keycode = 0x5D
	KeypadSix          Keycode = 0x5E
	KeypadSeven        Keycode = 0x5F
	KeypadEight        Keycode = 0x60
	KeypadNine         Keycode = 0x61
	KeypadZero         Keycode = 0x62
	KeypadPeriod       Keycode = 0x63
	KeypadEquals       Keycode = 0x67

	KeyApplication Keycode = 0x65
	KeyPower       Keycode = 0x66

	KeyF13 Keycode = 0x68
	KeyF14 Keycode = 0x69
	KeyF15 Keycode = 0x6A
	KeyF16 Keycode = 0x6B
	KeyF17 Keycode = 0x6C
	KeyF18 Keycode = 0x6D
	KeyF19 Keycode = 0x6E
	KeyF20 Keycode = 0x6F
	KeyF21 Keycode = 0x70
	KeyF22 Keycode = 0x71
	KeyF23 Keycode = 0x72
	KeyF24 Keycode = 0x73

	KeyLeftControl  Keycode = 0xE0
	KeyLeftShift    Keycode = 0xE1
	KeyLeftAlt      Keycode = 0xE2
	KeyLeftGUI      Keycode = 0xE3
	KeyRightControl Keycode = 0xE4
	KeyRightShift   Keycode = 0xE5
	KeyRightAlt     Keycode = 0xE6
	KeyRightGUI     Keycode = 0xE7
)

// Consumer page usage IDs for the media key vocabulary.
const (
	ConsumerVolumeIncrement ConsumerCode = 0xE9
	ConsumerVolumeDecrement ConsumerCode = 0xEA
	ConsumerMute            ConsumerCode = 0xE2
	ConsumerScanNextTrack   ConsumerCode = 0xB5
	ConsumerScanPrevTrack   ConsumerCode = 0xB6
	ConsumerPlayPause       ConsumerCode = 0xCD
	ConsumerStop            ConsumerCode = 0xB7
)

// duckyKeys is the primary symbolic name table. Script compatibility
// requires this vocabulary, aliases included, to stay exactly as is.
var duckyKeys = map[string]Keycode{
	"WINDOWS": KeyLeftGUI, "RWINDOWS": KeyRightGUI, "GUI": KeyLeftGUI, "RGUI": KeyRightGUI,
	"COMMAND": KeyLeftGUI, "RCOMMAND": KeyRightGUI,
	"APP": KeyApplication, "MENU": KeyApplication,
	"SHIFT": KeyLeftShift, "RSHIFT": KeyRightShift,
	"ALT": KeyLeftAlt, "RALT": KeyRightAlt, "OPTION": KeyLeftAlt, "ROPTION": KeyRightAlt,
	"CONTROL": KeyLeftControl, "CTRL": KeyLeftControl, "RCTRL": KeyRightControl,
	"DOWNARROW": KeyDownArrow, "DOWN": KeyDownArrow,
	"LEFTARROW": KeyLeftArrow, "LEFT": KeyLeftArrow,
	"RIGHTARROW": KeyRightArrow, "RIGHT": KeyRightArrow,
	"UPARROW": KeyUpArrow, "UP": KeyUpArrow,
	"BREAK": KeyPause, "PAUSE": KeyPause,
	"CAPSLOCK": KeyCapsLock, "DELETE": KeyDelete,
	"END": KeyEnd, "ESC": KeyEscape, "ESCAPE": KeyEscape, "HOME": KeyHome,
	"INSERT": KeyInsert, "NUMLOCK": KeypadNumlock, "PAGEUP": KeyPageUp,
	"PAGEDOWN": KeyPageDown, "PRINTSCREEN": KeyPrintScreen, "ENTER": KeyEnter,
	"SCROLLLOCK": KeyScrollLock, "SPACE": KeySpace, "TAB": KeyTab,
	"BACKSPACE": KeyBackspace,
	"A":         KeyA, "B": KeyB, "C": KeyC, "D": KeyD, "E": KeyE,
	"F": KeyF, "G": KeyG, "H": KeyH, "I": KeyI, "J": KeyJ,
	"K": KeyK, "L": KeyL, "M": KeyM, "N": KeyN, "O": KeyO,
	"P": KeyP, "Q": KeyQ, "R": KeyR, "S": KeyS, "T": KeyT,
	"U": KeyU, "V": KeyV, "W": KeyW, "X": KeyX, "Y": KeyY,
	"Z": KeyZ,
	"F1": KeyF1, "F2": KeyF2, "F3": KeyF3, "F4": KeyF4,
	"F5": KeyF5, "F6": KeyF6, "F7": KeyF7, "F8": KeyF8,
	"F9": KeyF9, "F10": KeyF10, "F11": KeyF11, "F12": KeyF12,
	"F13": KeyF13, "F14": KeyF14, "F15": KeyF15, "F16": KeyF16,
	"F17": KeyF17, "F18": KeyF18, "F19": KeyF19, "F20": KeyF20,
	"F21": KeyF21, "F22": KeyF22, "F23": KeyF23, "F24": KeyF24,
}

// duckyConsumerKeys is the consumer-control (media key) name table.
var duckyConsumerKeys = map[string]ConsumerCode{
	"MK_VOLUP":   ConsumerVolumeIncrement,
	"MK_VOLDOWN": ConsumerVolumeDecrement,
	"MK_MUTE":    ConsumerMute,
	"MK_NEXT":    ConsumerScanNextTrack,
	"MK_PREV":    ConsumerScanPrevTrack,
	"MK_PP":      ConsumerPlayPause,
	"MK_STOP":    ConsumerStop,
}

// extendedKeys covers the rest of the HID keyboard page. Unrecognized
// tokens fall through to this table last, mirroring the platform keycode
// lookup of the reference firmware.
var extendedKeys = map[string]Keycode{
	"ONE": KeyOne, "TWO": KeyTwo, "THREE": KeyThree, "FOUR": KeyFour,
	"FIVE": KeyFive, "SIX": KeySix, "SEVEN": KeySeven, "EIGHT": KeyEight,
	"NINE": KeyNine, "ZERO": KeyZero,
	"RETURN": KeyEnter, "SPACEBAR": KeySpace,
	"MINUS": KeyMinus, "EQUALS": KeyEquals,
	"LEFT_BRACKET": KeyLeftBracket, "RIGHT_BRACKET": KeyRightBracket,
	"BACKSLASH": KeyBackslash, "POUND": KeyPound,
	"SEMICOLON": KeySemicolon, "QUOTE": KeyQuote, "GRAVE_ACCENT": KeyGraveAccent,
	"COMMA": KeyComma, "PERIOD": KeyPeriod, "FORWARD_SLASH": KeyForwardSlash,
	"CAPS_LOCK": KeyCapsLock, "PRINT_SCREEN": KeyPrintScreen,
	"SCROLL_LOCK": KeyScrollLock, "APPLICATION": KeyApplication, "POWER": KeyPower,
	"KEYPAD_NUMLOCK": KeypadNumlock, "KEYPAD_FORWARD_SLASH": KeypadForwardSlash,
	"KEYPAD_ASTERISK": KeypadAsterisk, "KEYPAD_MINUS": KeypadMinus,
	"KEYPAD_PLUS": KeypadPlus, "KEYPAD_ENTER": KeypadEnter,
	"KEYPAD_ONE": KeypadOne, "KEYPAD_TWO": KeypadTwo, "KEYPAD_THREE": KeypadThree,
	"KEYPAD_FOUR": KeypadFour, "KEYPAD_FIVE": KeypadFive, "KEYPAD_SIX": KeypadSix,
	"KEYPAD_SEVEN": KeypadSeven, "KEYPAD_EIGHT": KeypadEight, "KEYPAD_NINE": KeypadNine,
	"KEYPAD_ZERO": KeypadZero, "KEYPAD_PERIOD": KeypadPeriod, "KEYPAD_EQUALS": KeypadEquals,
	"LEFT_CONTROL": KeyLeftControl, "LEFT_SHIFT": KeyLeftShift,
	"LEFT_ALT": KeyLeftAlt, "LEFT_GUI": KeyLeftGUI,
	"RIGHT_CONTROL": KeyRightControl, "RIGHT_SHIFT": KeyRightShift,
	"RIGHT_ALT": KeyRightAlt, "RIGHT_GUI": KeyRightGUI,
	"UP_ARROW": KeyUpArrow, "DOWN_ARROW": KeyDownArrow,
	"LEFT_ARROW": KeyLeftArrow, "RIGHT_ARROW": KeyRightArrow,
	"PAGE_UP": KeyPageUp, "PAGE_DOWN": KeyPageDown,
}

// LookupKey resolves a symbolic name against the primary key table only.
// HOLD and RELEASE statements use this, they do not reach the consumer or
// extended tables.
func LookupKey(name string) (Keycode, bool) {
	code, ok := duckyKeys[name]
	return code, ok
}

// LookupConsumer resolves a symbolic name against the consumer-control table.
func LookupConsumer(name string) (ConsumerCode, bool) {
	code, ok := duckyConsumerKeys[name]
	return code, ok
}

// Kind tells which HID page a resolved symbolic name belongs to.
type Kind int

const (
	// KindKeyboard is a keyboard page usage
	KindKeyboard Kind = iota
	// KindConsumer is a consumer page usage
	KindConsumer
)

// Code is a resolved symbolic name.
type Code struct {
	Kind     Kind
	Key      Keycode
	Consumer ConsumerCode
}

// Resolve resolves one symbolic token for a combo statement. Tables are
// checked in order: primary keys, consumer keys, extended keys.
func Resolve(name string) (Code, bool) {
	if code, ok := LookupKey(name); ok {
		return Code{Kind: KindKeyboard, Key: code}, true
	}
	if code, ok := LookupConsumer(name); ok {
		return Code{Kind: KindConsumer, Consumer: code}, true
	}
	if code, ok := extendedKeys[name]; ok {
		return Code{Kind: KindKeyboard, Key: code}, true
	}
	return Code{}, false
}
