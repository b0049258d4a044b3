// Copyright 2023 Paolo Fabio Zaino
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine implements the frame transport and the script job engine
// that sits between a byte-stream transport (serial, TCP, stdin) and the
// script interpreter.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
	"github.com/spaolacci/murmur3"
)

// ErrNotAFrame is returned by Parse for lines that are not script frame
// candidates. Such lines are plain console noise and must never abort
// the transport loop.
var ErrNotAFrame = errors.New("line is not a script frame")

// frameSchema validates a candidate frame before it is accepted.
const frameSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"ducky_script": {
			"type": "string",
			"minLength": 1
		}
	},
	"required": ["ducky_script"]
}`

// Frame is the wire envelope carrying a script.
type Frame struct {
	DuckyScript string `json:"ducky_script"`
}

// FrameParser turns transport lines into scripts.
type FrameParser struct {
	schema *jsonschema.Schema
}

// NewFrameParser creates a parser with the frame schema pre-compiled.
func NewFrameParser() (*FrameParser, error) {
	schema := &jsonschema.Schema{}
	if err := schema.UnmarshalJSON([]byte(frameSchema)); err != nil {
		return nil, fmt.Errorf("compiling frame schema: %v", err)
	}
	return &FrameParser{schema: schema}, nil
}

// Parse extracts a script from a transport line. A line is a frame
// candidate only if it starts with "{" and mentions the ducky_script
// field; everything else gets ErrNotAFrame. Candidate lines that fail
// JSON parsing or schema validation return a descriptive error.
func (p *FrameParser) Parse(ctx context.Context, line string) (string, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !strings.Contains(trimmed, "ducky_script") {
		return "", ErrNotAFrame
	}

	valErrs, err := p.schema.ValidateBytes(ctx, []byte(trimmed))
	if err != nil {
		return "", fmt.Errorf("invalid frame: %v", err)
	}
	if len(valErrs) > 0 {
		return "", fmt.Errorf("invalid frame: %v", valErrs[0].Error())
	}

	var frame Frame
	if err := json.Unmarshal([]byte(trimmed), &frame); err != nil {
		return "", fmt.Errorf("invalid frame: %v", err)
	}

	// Senders escape newlines so the frame survives line-oriented
	// transports, the two-character sequence `\n` therefore means a
	// real newline in the script body.
	script := strings.ReplaceAll(frame.DuckyScript, `\n`, "\n")
	if strings.TrimSpace(script) == "" {
		return "", errors.New("invalid frame: empty script")
	}
	return script, nil
}

// Fingerprint computes a stable fingerprint of a script body, used to
// drop duplicate frames arriving in quick succession.
func Fingerprint(script string) string {
	h1, h2 := murmur3.Sum128([]byte(script))
	return fmt.Sprintf("%016x%016x", h1, h2)
}
