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
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var varTokenPattern = regexp.MustCompile(`\$\w+`)

type define struct {
	name  string
	value string
}

// State holds the interpreter tables: named variables, read-only live
// variables, defines and captured functions, plus the timing governor's
// default delay. It is an explicit value owned by the Runner and threaded
// through every dispatch call; it persists across script passes until
// Reset is called at the transport boundary.
type State struct {
	vars map[string]float64
	live map[string]func() float64

	// defines are applied in declaration order on every line
	defines []define

	funcs map[string][]string

	// DefaultDelay is the pause charged after every top-level statement.
	DefaultDelay time.Duration

	rng *rand.Rand
}

// NewState returns a State seeded with the built-in variables
// ($_RANDOM_MIN, $_RANDOM_MAX) and the $_RANDOM_INT live variable.
func NewState() *State {
	s := &State{
		vars:  make(map[string]float64),
		live:  make(map[string]func() float64),
		funcs: make(map[string][]string),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // script randomness, not crypto
	}

	s.vars["$_RANDOM_MIN"] = 0
	s.vars["$_RANDOM_MAX"] = 65535

	// $_RANDOM_INT yields a fresh value on every reference
	s.live["$_RANDOM_INT"] = func() float64 {
		return float64(s.randomInt())
	}

	return s
}

// randomInt returns a random integer in [$_RANDOM_MIN, $_RANDOM_MAX].
func (s *State) randomInt() int {
	lo := int(s.vars["$_RANDOM_MIN"])
	hi := int(s.vars["$_RANDOM_MAX"])
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// SetVar declares or overwrites a variable. Names are globally unique and
// globally visible, the `$` prefix is part of the name.
func (s *State) SetVar(name string, value float64) {
	s.vars[name] = value
}

// Var returns a variable's current value.
func (s *State) Var(name string) (float64, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// RegisterLive installs a read-only live variable whose value is
// recomputed on every reference.
func (s *State) RegisterLive(name string, fn func() float64) {
	s.live[name] = fn
}

// AddDefine installs a name -> replacement-text macro. There is no
// undefine; redefinition updates the value in place.
func (s *State) AddDefine(name, value string) {
	for i := range s.defines {
		if s.defines[i].name == name {
			s.defines[i].value = value
			return
		}
	}
	s.defines = append(s.defines, define{name: name, value: value})
}

// ApplyDefines runs macro substitution over a line, in declaration order.
// This happens before keyword classification on every line.
func (s *State) ApplyDefines(line string) string {
	for _, d := range s.defines {
		line = strings.ReplaceAll(line, d.name, d.value)
	}
	return line
}

// SubstituteLive replaces every live-variable token with a freshly
// computed value and leaves everything else untouched.
func (s *State) SubstituteLive(line string) string {
	if !strings.Contains(line, "$") {
		return line
	}
	return varTokenPattern.ReplaceAllStringFunc(line, func(tok string) string {
		if fn, ok := s.live[tok]; ok {
			return formatNumber(fn())
		}
		return tok
	})
}

// SubstituteVars replaces every `$name` token with the variable's current
// value (live variables included). Unknown tokens are left as written.
func (s *State) SubstituteVars(line string) string {
	if !strings.Contains(line, "$") {
		return line
	}
	return varTokenPattern.ReplaceAllStringFunc(line, func(tok string) string {
		if v, ok := s.vars[tok]; ok {
			return formatNumber(v)
		}
		if fn, ok := s.live[tok]; ok {
			return formatNumber(fn())
		}
		return tok
	})
}

// SetFunction captures a function body, raw line sequence, verbatim.
func (s *State) SetFunction(name string, body []string) {
	s.funcs[name] = body
}

// Function returns a captured function body.
func (s *State) Function(name string) ([]string, bool) {
	body, ok := s.funcs[name]
	return body, ok
}

// formatNumber renders a numeric value the way scripts expect: whole
// values print without a decimal point.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SeedRandom reseeds the script random source, used by tests and by
// payloads that need reproducible random output.
func (s *State) SeedRandom(seed int64) {
	s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // script randomness, not crypto
}
