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

// Package main (healthCheck) is a command line that allows to check if a
// running duckyd is reachable. It probes the metrics endpoint, which is
// the only outward HTTP surface the daemon exposes.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	cmn "github.com/pzaino/theducker/pkg/common"
	cfg "github.com/pzaino/theducker/pkg/config"
)

var (
	config cfg.Config
)

func genHealthURL() string {
	if config.Metrics.Port == 0 {
		return ""
	}
	return fmt.Sprintf("http://%s:%d/metrics", config.Metrics.Host, config.Metrics.Port)
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")

	cmn.InitLogger("healthCheck")

	// Parse the command line arguments
	flag.Parse()

	// Load the configuration file
	var err error
	config, err = cfg.LoadConfig(*configFile)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, fmt.Sprintf("Health check failed to load config.yaml: %v", err))
		os.Exit(1)
	}

	// Define the health check endpoint
	healthURL := genHealthURL()
	if healthURL == "" {
		// No metrics endpoint configured, nothing to probe
		os.Exit(0)
	}

	// Perform the GET request
	resp, err := http.Get(healthURL) //nolint:gosec // This is usually a localhost connection
	if err != nil || resp.StatusCode != http.StatusOK {
		cmn.DebugMsg(cmn.DbgLvlDebug, fmt.Sprintf("Health check failed: %v", err))
		// If there's an error or the status is not 200, exit with a non-zero status
		os.Exit(1)
	}

	// If successful, exit with zero (healthy)
	os.Exit(0)
}
