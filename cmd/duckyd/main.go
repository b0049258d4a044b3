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

// Package main (duckyd) implements the script injection daemon. It reads
// framed scripts from a serial device, a TCP listener or stdin and hands
// them to the execution engine.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.bug.st/serial"

	cmn "github.com/pzaino/theducker/pkg/common"
	cfg "github.com/pzaino/theducker/pkg/config"
	eng "github.com/pzaino/theducker/pkg/engine"
	"github.com/pzaino/theducker/pkg/hid"
)

var (
	configFile  *string
	config      cfg.Config
	configMutex = &sync.Mutex{}
)

func main() {
	// Parse the command line arguments
	configFile = flag.String("config", "./config.yaml", "Path to the configuration file")
	flag.Parse()

	// Initialize the logger
	cmn.InitLogger("DuckyD")
	cmn.DebugMsg(cmn.DbgLvlInfo, "duckyd is starting...")

	// Setting up a channel to listen for termination signals
	cmn.DebugMsg(cmn.DbgLvlInfo, "Setting up termination signals listener...")
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	// Define signal handling
	go func() {
		for {
			sig := <-signals
			switch sig {
			case syscall.SIGINT:
				// Handle SIGINT (Ctrl+C)
				cmn.DebugMsg(cmn.DbgLvlInfo, "SIGINT received, shutting down...")
				os.Exit(0)

			case syscall.SIGTERM:
				// Handle SIGTERM
				cmn.DebugMsg(cmn.DbgLvlInfo, "SIGTERM received, shutting down...")
				os.Exit(0)

			case syscall.SIGQUIT:
				// Handle SIGQUIT
				cmn.DebugMsg(cmn.DbgLvlInfo, "SIGQUIT received, shutting down...")
				os.Exit(0)

			case syscall.SIGHUP:
				// Handle SIGHUP
				cmn.DebugMsg(cmn.DbgLvlInfo, "SIGHUP received, reloading configuration...")
				configMutex.Lock()
				err := initAll(configFile, &config)
				if err != nil {
					configMutex.Unlock()
					cmn.DebugMsg(cmn.DbgLvlFatal, "Error reloading the configuration: %v", err)
				}
				configMutex.Unlock()
			}
		}
	}()

	// Initialize the configuration
	err := initAll(configFile, &config)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Error initializing duckyd: %v", err)
		os.Exit(-1)
	}

	runtime.GOMAXPROCS(runtime.NumCPU())

	engine, err := eng.New(config.Engine, newEmitter(config.Engine.Emitter))
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Error creating the engine: %v", err)
		os.Exit(-1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	// Expose the metrics endpoint
	if config.Metrics.Port > 0 {
		go serveMetrics()
	}

	err = runTransport(ctx, engine)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "Transport error: %v", err)
	}

	// let the script in flight observe the cancellation before exiting
	cancel()
	<-engine.Done()
	if err != nil {
		os.Exit(1)
	}
}

func initAll(configFile *string, config *cfg.Config) error {
	var err error
	*config, err = cfg.LoadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("reading config file: %v", err)
	}
	if cfg.IsEmpty(*config) {
		return fmt.Errorf("config file is empty")
	}

	// Set the OS variable
	config.OS = runtime.GOOS

	cmn.SetDebugLevel(cmn.DbgLevel(config.DebugLevel))
	return nil
}

// newEmitter maps the configured emitter name onto an implementation.
// "record" is useful for dry runs: nothing is typed, everything can be
// inspected through the diagnostic output.
func newEmitter(name string) hid.Emitter {
	switch name {
	case "record":
		return hid.NewRecorder()
	default:
		return hid.Console{}
	}
}

func serveMetrics() {
	configMutex.Lock()
	addr := config.Metrics.Host + ":" + fmt.Sprintf("%d", config.Metrics.Port)
	configMutex.Unlock()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Serving metrics on %s", addr)
	cmn.DebugMsg(cmn.DbgLvlError, "Metrics server return: %v", srv.ListenAndServe())
}

// runTransport selects the line source: TCP listener when configured,
// otherwise the serial device, otherwise stdin.
func runTransport(ctx context.Context, engine *eng.Engine) error {
	configMutex.Lock()
	listenPort := config.Listen.Port
	serialPort := config.Serial.Port
	configMutex.Unlock()

	switch {
	case listenPort > 0:
		return listenTCP(ctx, engine)
	case serialPort != "":
		return readSerial(ctx, engine)
	default:
		cmn.DebugMsg(cmn.DbgLvlInfo, "No transport configured, reading frames from stdin")
		return readLines(ctx, engine, os.Stdin)
	}
}

func readSerial(ctx context.Context, engine *eng.Engine) error {
	configMutex.Lock()
	port := config.Serial.Port
	mode := &serial.Mode{BaudRate: config.Serial.BaudRate}
	timeout := time.Duration(config.Serial.Timeout) * time.Second
	configMutex.Unlock()

	dev, err := serial.Open(port, mode)
	if err != nil {
		return fmt.Errorf("opening serial port %s: %v", port, err)
	}
	defer dev.Close() //nolint:errcheck // best effort close on exit
	if timeout > 0 {
		if err := dev.SetReadTimeout(timeout); err != nil {
			return fmt.Errorf("setting read timeout: %v", err)
		}
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Reading frames from %s at %d baud", port, mode.BaudRate)

	// A timed-out Read returns n == 0 with no error, so lines are
	// accumulated by hand instead of through a bufio.Scanner.
	var acc []byte
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := dev.Read(buf)
		if err != nil {
			return fmt.Errorf("reading from %s: %v", port, err)
		}
		for _, b := range buf[:n] {
			switch b {
			case '\n':
				engine.HandleLine(ctx, string(acc))
				acc = acc[:0]
			case '\r':
				// swallow, the peer may send CRLF
			default:
				acc = append(acc, b)
			}
		}
	}
}

func listenTCP(ctx context.Context, engine *eng.Engine) error {
	configMutex.Lock()
	addr := config.Listen.Host + ":" + fmt.Sprintf("%d", config.Listen.Port)
	configMutex.Unlock()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %v", addr, err)
	}
	defer ln.Close() //nolint:errcheck // best effort close on exit
	cmn.DebugMsg(cmn.DbgLvlInfo, "Listening for frames on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accepting connection: %v", err)
		}
		cmn.DebugMsg(cmn.DbgLvlDebug, "Connection from %s", conn.RemoteAddr())
		go func(c net.Conn) {
			defer c.Close() //nolint:errcheck // best effort close on exit
			if err := readLines(ctx, engine, c); err != nil {
				cmn.DebugMsg(cmn.DbgLvlDebug, "Connection %s closed: %v", c.RemoteAddr(), err)
			}
		}(conn)
	}
}

func readLines(ctx context.Context, engine *eng.Engine, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		engine.HandleLine(ctx, scanner.Text())
	}
	return scanner.Err()
}
