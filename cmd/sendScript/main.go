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

// Package main (sendScript) is a command line that frames a script file
// and sends it to a running duckyd over its serial or TCP transport.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"go.bug.st/serial"

	cfg "github.com/pzaino/theducker/pkg/config"
)

var (
	config cfg.Config
)

// frameScript wraps a script body in its single-line wire envelope.
// Real newlines become the two-character sequence `\n` so the frame
// survives a line-oriented transport, the daemon undoes this on receipt.
func frameScript(script string) (string, error) {
	script = strings.ReplaceAll(script, "\r\n", "\n")
	script = strings.TrimRight(script, "\n")
	if strings.TrimSpace(script) == "" {
		return "", fmt.Errorf("script is empty")
	}
	escaped := strings.ReplaceAll(script, "\n", `\n`)

	payload, err := json.Marshal(map[string]string{"ducky_script": escaped})
	if err != nil {
		return "", err
	}
	return string(payload) + "\n", nil
}

func openTransport() (io.WriteCloser, error) {
	if config.Listen.Port > 0 {
		addr := config.Listen.Host + ":" + fmt.Sprintf("%d", config.Listen.Port)
		return net.Dial("tcp", addr)
	}
	if config.Serial.Port != "" {
		mode := &serial.Mode{BaudRate: config.Serial.BaudRate}
		return serial.Open(config.Serial.Port, mode)
	}
	return os.Stdout, nil
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	scriptFile := flag.String("script", "", "Path to the script file to send")
	flag.Parse()

	// Read the configuration file
	var err error
	config, err = cfg.LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	// Check if the script file is provided
	if *scriptFile == "" {
		log.Fatal("Please provide a script file to send.")
	}

	body, err := os.ReadFile(*scriptFile)
	if err != nil {
		log.Fatal(err)
	}

	frame, err := frameScript(string(body))
	if err != nil {
		log.Fatal(err)
	}

	out, err := openTransport()
	if err != nil {
		log.Fatal(err)
	}
	if out != os.Stdout {
		defer out.Close() //nolint:errcheck // best effort close on exit
	}

	if _, err := out.Write([]byte(frame)); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Script sent successfully:", *scriptFile)
}
