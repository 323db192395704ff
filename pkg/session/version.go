// Package session builds constraint scoring sessions.
//
// Version: 0.1.0
//
// A Factory takes a Config and a stream.Provider, assembles the constraint
// graph once and resolves every constraint weight. Sessions built from it
// run on either backend, the bavet tuple network or the rete rule engine,
// and give the same scores and the same constraint matches.
//
//	f, err := session.NewFactory(ctx, cfg, provider)
//	s, err := f.NewSession(ctx)
//	s.Insert(queen)
//	sc, err := s.CalculateScore(0)
//
// Sessions are single goroutine. See internal/parallel for replication.
package session

import (
	"runtime"
	"runtime/debug"
)

// Version is the version of the scoring library.
const Version = "0.1.0"

// VersionInfo describes a build of the library. Binaries may fill in the
// build date, and the commit when the toolchain did not stamp one.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// GetVersionInfo reports the library version and the Go toolchain, plus the
// VCS revision the go command stamped into the binary, if any.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{Version: Version, GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}
