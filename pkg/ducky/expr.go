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
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
)

// Evaluate runs the restricted expression evaluator: every `$name` token
// is replaced by the variable's current value (0 if unknown), `^` is
// rewritten to the power operator, then the text is evaluated as a pure
// arithmetic/comparison/boolean expression. Script text is untrusted
// remote input, so this is a closed grammar, never a general
// code-execution primitive.
func (s *State) Evaluate(expression string) (float64, error) {
	result, err := s.evaluate(expression)
	if err != nil {
		return 0, err
	}

	switch v := result.(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expression %q did not return a number or boolean", expression)
	}
}

// EvaluateBool evaluates an expression as a condition. Booleans are taken
// as-is, numbers are true when non-zero.
func (s *State) EvaluateBool(expression string) (bool, error) {
	result, err := s.evaluate(expression)
	if err != nil {
		return false, err
	}

	switch v := result.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("condition %q did not return a number or boolean", expression)
	}
}

func (s *State) evaluate(expression string) (interface{}, error) {
	substituted := varTokenPattern.ReplaceAllStringFunc(expression, func(tok string) string {
		if v, ok := s.vars[tok]; ok {
			return formatNumber(v)
		}
		if fn, ok := s.live[tok]; ok {
			return formatNumber(fn())
		}
		// unknown variables read as 0
		return "0"
	})

	// `^` is the script power operator, not XOR
	substituted = strings.ReplaceAll(substituted, "^", "**")

	parsedExpr, err := govaluate.NewEvaluableExpression(substituted)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %v", expression, err)
	}

	result, err := parsedExpr.Evaluate(nil)
	if err != nil {
		return nil, fmt.Errorf("error evaluating expression %q: %v", expression, err)
	}

	return result, nil
}
