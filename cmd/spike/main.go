// Command spike serves the greeting resource over HTTP.
//
// Run:
//
//	go run ./cmd/spike                  serve on :8888
//	go run ./cmd/spike serve --addr :9000
//	go run ./cmd/spike routes           print the registered routes as YAML
//
// Then:
//
//	curl http://localhost:8888/         hello
//	curl http://localhost:8888/hello    hello
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
