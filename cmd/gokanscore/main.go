// Command gokanscore scores the demo planning problems and benchmarks the
// scoring backends.
//
//	gokanscore score --problem nqueens --size 8 --steps 2000
//	gokanscore score --config session.yaml --problem cloudbalancing
//	gokanscore bench --backend rete --workers 4 --steps 5000
//	gokanscore version --json
//
// Release builds stamp the commit and build date:
//
//	go build -ldflags "-X main.gitCommit=$(git rev-parse HEAD) -X main.buildDate=$(date -u +%FT%TZ)" ./cmd/gokanscore
package main

import (
	"log/slog"
	"os"
)

// Set through -ldflags -X.
var (
	gitCommit string
	buildDate string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("gokanscore failed", "error", err)
		os.Exit(1)
	}
}
