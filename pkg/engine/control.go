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

package engine

import (
	"strings"

	"github.com/google/shlex"

	cmn "github.com/pzaino/theducker/pkg/common"
)

// controlPrefix marks out-of-band lines that manage the engine rather
// than carry a script.
const controlPrefix = "CTRL:"

// handleControl executes a control line. Responses go to the diagnostic
// sink so a human on the other end of the transport can read them.
func (e *Engine) handleControl(line string) {
	args, err := shlex.Split(strings.TrimSpace(strings.TrimPrefix(line, controlPrefix)))
	if err != nil {
		cmn.DiagMsg("[CTRL]: parse error: %v", err)
		return
	}
	if len(args) == 0 {
		cmn.DiagMsg("[CTRL]: empty command")
		return
	}

	switch strings.ToUpper(args[0]) {
	case "KILL":
		if len(args) < 2 {
			cmn.DiagMsg("[CTRL]: KILL requires a job id")
			return
		}
		if e.Kill(args[1]) {
			cmn.DiagMsg("[CTRL]: killed %s", args[1])
		} else {
			cmn.DiagMsg("[CTRL]: no such job %s", args[1])
		}
	case "KILL_ALL":
		e.KillAll()
		cmn.DiagMsg("[CTRL]: killed all jobs")
	case "RESET_STATE":
		e.ResetState()
		cmn.DiagMsg("[CTRL]: state reset scheduled")
	case "STATUS":
		running, queued := e.Status()
		if running == "" {
			running = "none"
		}
		cmn.DiagMsg("[CTRL]: running=%s queued=%d", running, queued)
	default:
		cmn.DiagMsg("[CTRL]: unknown command %q", args[0])
	}
}
