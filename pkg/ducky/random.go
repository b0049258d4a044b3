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

// Alphabets for the RANDOM_* statement family.
const (
	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	uppercaseLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberChars      = "0123456789"
	specialChars     = "!@#$%^&*()"
	hexChars         = "0123456789ABCDEF"
)

// typeRandom types count random characters drawn from the alphabet, one
// write per character like the reference firmware.
func (it *Interpreter) typeRandom(alphabet string, count int) {
	for i := 0; i < count; i++ {
		c := alphabet[it.state.rng.Intn(len(alphabet))]
		it.emit.Write(string(c))
	}
}
