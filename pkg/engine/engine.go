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
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	cmn "github.com/pzaino/theducker/pkg/common"
	cfg "github.com/pzaino/theducker/pkg/config"
	"github.com/pzaino/theducker/pkg/ducky"
	"github.com/pzaino/theducker/pkg/hid"
)

// ErrBusy is returned by Submit when the queue is full, or when the
// busy policy is "reject" and a script is already running.
var ErrBusy = errors.New("engine busy")

// ErrDuplicate is returned by Submit when dedup is enabled and an
// identical script arrived within the dedup window.
var ErrDuplicate = errors.New("duplicate script")

// Job is a queued script together with its lifecycle handles.
type Job struct {
	ID     string
	Script string

	submitted time.Time
	cancel    context.CancelFunc
	killed    bool
}

// Engine owns the interpreter state and executes scripts one at a time
// from a bounded queue. Scripts never run concurrently: the keyboard is
// a single shared output, so a single worker goroutine drains the
// queue. Kill and KillAll cancel through the per-job context, which the
// interpreter checks between statements and during delays.
type Engine struct {
	conf    cfg.EngineConfig
	emitter hid.Emitter
	parser  *FrameParser
	limiter *rate.Limiter

	queue chan *Job

	mu              sync.Mutex
	pending         map[string]*Job
	current         *Job
	resetRequested  bool
	lastFingerprint string
	lastAccepted    time.Time

	done chan struct{}
}

// New builds an engine from the engine section of the configuration.
func New(conf cfg.EngineConfig, emitter hid.Emitter) (*Engine, error) {
	parser, err := NewFrameParser()
	if err != nil {
		return nil, err
	}
	size := conf.QueueSize
	if size <= 0 {
		size = 1
	}
	return &Engine{
		conf:    conf,
		emitter: meteredEmitter{Emitter: emitter},
		parser:  parser,
		limiter: newLimiter(conf.RateLimit),
		queue:   make(chan *Job, size),
		pending: make(map[string]*Job),
		done:    make(chan struct{}),
	}, nil
}

// newLimiter parses a "<rate>,<burst>" string into a token bucket,
// falling back to 10,10 on any malformed part.
func newLimiter(rateLimit string) *rate.Limiter {
	var rl, bl int
	if strings.TrimSpace(rateLimit) == "" {
		rateLimit = "10,10"
	}
	if !strings.Contains(rateLimit, ",") {
		rateLimit = rateLimit + ",10"
	}
	rlStr := strings.Split(rateLimit, ",")[0]
	if rlStr == "" {
		rlStr = "10"
	}
	rl, err := strconv.Atoi(rlStr)
	if err != nil {
		rl = 10
	}
	blStr := strings.Split(rateLimit, ",")[1]
	if blStr == "" {
		blStr = "10"
	}
	bl, err = strconv.Atoi(blStr)
	if err != nil {
		bl = 10
	}
	return rate.NewLimiter(rate.Limit(rl), bl)
}

// newRunner builds a fresh interpreter stack for the worker.
func (e *Engine) newRunner() *ducky.Runner {
	state := ducky.NewState()
	if e.conf.DefaultDelay > 0 {
		state.DefaultDelay = time.Duration(e.conf.DefaultDelay) * time.Millisecond
	}
	it := ducky.NewInterpreter(state, e.emitter)
	if e.conf.MaxCallDepth > 0 {
		it.SetMaxCallDepth(e.conf.MaxCallDepth)
	}
	return ducky.NewRunner(it)
}

// Start launches the worker goroutine. The worker exits, after finishing
// the script in flight, when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go e.work(ctx)
}

// Done is closed once the worker goroutine has exited.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) work(ctx context.Context) {
	defer close(e.done)
	runner := e.newRunner()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-e.queue:
			queueDepth.Set(float64(len(e.queue)))

			e.mu.Lock()
			if job.killed {
				delete(e.pending, job.ID)
				e.mu.Unlock()
				scriptsFinished.WithLabelValues("canceled").Inc()
				cmn.DebugMsg(cmn.DbgLvlInfo, "Script %s killed while queued", job.ID)
				continue
			}
			if e.resetRequested {
				e.resetRequested = false
				runner = e.newRunner()
				cmn.DebugMsg(cmn.DbgLvlInfo, "Interpreter state reset")
			}
			jobCtx, cancel := context.WithCancel(ctx)
			job.cancel = cancel
			delete(e.pending, job.ID)
			e.current = job
			e.mu.Unlock()

			cmn.DebugMsg(cmn.DbgLvlInfo, "Executing script %s (%d bytes, queued %v ago)",
				job.ID, len(job.Script), time.Since(job.submitted).Round(time.Millisecond))
			err := runner.Run(jobCtx, job.Script)
			cancel()

			e.mu.Lock()
			e.current = nil
			e.mu.Unlock()

			switch {
			case err == nil:
				scriptsFinished.WithLabelValues("completed").Inc()
				cmn.DebugMsg(cmn.DbgLvlInfo, "Script %s completed", job.ID)
			case errors.Is(err, context.Canceled):
				scriptsFinished.WithLabelValues("canceled").Inc()
				cmn.DebugMsg(cmn.DbgLvlInfo, "Script %s canceled", job.ID)
			default:
				scriptsFinished.WithLabelValues("failed").Inc()
				cmn.DebugMsg(cmn.DbgLvlError, "Script %s failed: %v", job.ID, err)
			}
		}
	}
}

// Submit queues a script for execution and returns the job ID. Dedup,
// rate limiting and the busy policy are all applied here, so transports
// only need to hand over the decoded script body.
func (e *Engine) Submit(script string) (string, error) {
	if !e.limiter.Allow() {
		framesRejected.WithLabelValues("rate_limited").Inc()
		return "", ErrBusy
	}

	if e.conf.Dedup {
		fp := Fingerprint(script)
		window := time.Duration(e.conf.DedupWindow) * time.Second
		e.mu.Lock()
		dup := fp == e.lastFingerprint && time.Since(e.lastAccepted) < window
		if !dup {
			e.lastFingerprint = fp
			e.lastAccepted = time.Now()
		}
		e.mu.Unlock()
		if dup {
			framesRejected.WithLabelValues("duplicate").Inc()
			return "", ErrDuplicate
		}
	}

	if strings.ToLower(e.conf.BusyPolicy) == "reject" {
		e.mu.Lock()
		busy := e.current != nil || len(e.queue) > 0
		e.mu.Unlock()
		if busy {
			framesRejected.WithLabelValues("busy").Inc()
			return "", ErrBusy
		}
	}

	job := &Job{
		ID:        uuid.New().String(),
		Script:    script,
		submitted: time.Now(),
	}

	// register before the channel send: the worker removes the entry on
	// dequeue, so registering afterwards could leave a stale entry behind
	// when the worker wins the race
	e.mu.Lock()
	e.pending[job.ID] = job
	e.mu.Unlock()

	select {
	case e.queue <- job:
	default:
		e.mu.Lock()
		delete(e.pending, job.ID)
		e.mu.Unlock()
		framesRejected.WithLabelValues("queue_full").Inc()
		return "", ErrBusy
	}

	scriptsQueued.Inc()
	queueDepth.Set(float64(len(e.queue)))
	cmn.DebugMsg(cmn.DbgLvlDebug, "Queued script %s", job.ID)
	return job.ID, nil
}

// Kill cancels the job with the given ID. A running job is cancelled at
// its next statement boundary or mid-delay, a queued job is marked so
// the worker drops it immediately. Returns false for unknown IDs.
func (e *Engine) Kill(jobID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil && e.current.ID == jobID {
		e.current.cancel()
		return true
	}
	if job, ok := e.pending[jobID]; ok {
		job.killed = true
		return true
	}
	return false
}

// KillAll cancels the running job and empties the queue.
func (e *Engine) KillAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, job := range e.pending {
		job.killed = true
	}
	if e.current != nil {
		e.current.cancel()
	}
}

// ResetState discards variables, defines and functions. The reset takes
// effect before the next script starts, never mid-script.
func (e *Engine) ResetState() {
	e.mu.Lock()
	e.resetRequested = true
	e.mu.Unlock()
}

// Status reports the engine's current occupancy.
func (e *Engine) Status() (running string, queued int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		running = e.current.ID
	}
	return running, len(e.queue)
}

// HandleLine is the transport entry point: one decoded text line in,
// zero or one engine action out. Non-frame lines are ignored, control
// lines are dispatched, script frames are parsed and submitted.
func (e *Engine) HandleLine(ctx context.Context, line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	if strings.HasPrefix(trimmed, controlPrefix) {
		e.handleControl(trimmed)
		return
	}

	script, err := e.parser.Parse(ctx, trimmed)
	if errors.Is(err, ErrNotAFrame) {
		return
	}
	framesReceived.Inc()
	if err != nil {
		framesRejected.WithLabelValues("invalid").Inc()
		cmn.DebugMsg(cmn.DbgLvlError, "Dropping frame: %v", err)
		return
	}

	id, err := e.Submit(script)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlInfo, "Dropping script: %v", err)
		return
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Accepted script %s", id)
}
