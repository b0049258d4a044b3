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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pzaino/theducker/pkg/hid"
	ckm "github.com/pzaino/theducker/pkg/keymap"
)

var (
	framesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duckyd_frames_received_total",
		Help: "Number of frame candidates received from the transport.",
	})
	framesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "duckyd_frames_rejected_total",
		Help: "Number of frames rejected before execution.",
	}, []string{"reason"})
	scriptsQueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duckyd_scripts_queued_total",
		Help: "Number of scripts accepted into the job queue.",
	})
	scriptsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "duckyd_scripts_finished_total",
		Help: "Number of scripts that finished, by outcome.",
	}, []string{"outcome"})
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "duckyd_queue_depth",
		Help: "Number of scripts waiting in the job queue.",
	})
	keyEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "duckyd_key_events_total",
		Help: "Number of key press events emitted, by kind.",
	}, []string{"kind"})
	typedChars = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duckyd_typed_characters_total",
		Help: "Number of characters typed through the layout primitive.",
	})
)

func init() {
	prometheus.MustRegister(framesReceived)
	prometheus.MustRegister(framesRejected)
	prometheus.MustRegister(scriptsQueued)
	prometheus.MustRegister(scriptsFinished)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(keyEvents)
	prometheus.MustRegister(typedChars)
}

// meteredEmitter counts emitted events on the way through to the real
// emitter.
type meteredEmitter struct {
	hid.Emitter
}

func (m meteredEmitter) PressKey(code ckm.Keycode) {
	keyEvents.WithLabelValues("keyboard").Inc()
	m.Emitter.PressKey(code)
}

func (m meteredEmitter) PressConsumer(code ckm.ConsumerCode) {
	keyEvents.WithLabelValues("consumer").Inc()
	m.Emitter.PressConsumer(code)
}

func (m meteredEmitter) Write(text string) {
	typedChars.Add(float64(len(text)))
	m.Emitter.Write(text)
}
