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

// The config package contains the configuration file parsing logic.
package config

// SerialConfig represents the serial transport section of the
// configuration file.
type SerialConfig struct {
	Port     string `yaml:"port"`     // e.g. /dev/ttyS0, empty means stdin
	BaudRate int    `yaml:"baudrate"` // default 115200
	Timeout  int    `yaml:"timeout"`  // read timeout in seconds
}

// ListenConfig represents the optional TCP transport section. When Port is
// non-zero the daemon accepts framed scripts on host:port instead of the
// serial device.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EngineConfig represents the script execution engine section.
type EngineConfig struct {
	Emitter      string `yaml:"emitter"`        // "console" or "record"
	DefaultDelay int    `yaml:"default_delay"`  // inter-statement pause in ms
	MaxCallDepth int    `yaml:"max_call_depth"` // FUNCTION call depth cap
	BusyPolicy   string `yaml:"busy_policy"`    // "queue" or "reject"
	QueueSize    int    `yaml:"queue_size"`     // pending scripts bound
	Dedup        bool   `yaml:"dedup"`          // drop repeated identical scripts
	DedupWindow  int    `yaml:"dedup_window"`   // seconds
	RateLimit    string `yaml:"rate_limit"`     // "<rate>,<burst>"
}

// MetricsConfig represents the Prometheus metrics endpoint section.
type MetricsConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config represents the structure of the configuration file
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Listen  ListenConfig  `yaml:"listen"`
	Engine  EngineConfig  `yaml:"engine"`
	Metrics MetricsConfig `yaml:"metrics"`

	OS         string `yaml:"os"`
	DebugLevel int    `yaml:"debug_level"`
}
