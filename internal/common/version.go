package common

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Build metadata, stamped at link time:
//
//	-ldflags "-X .../internal/common.Version=v0.2.0 -X .../internal/common.GitCommit=abc1234"
//
// Unstamped builds may ship a .version file next to the binary instead.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

func GetVersion() string   { return Version }
func GetBuild() string     { return Build }
func GetGitCommit() string { return GitCommit }

// LoadVersionFromFile fills unstamped build metadata from a .version file in
// the binary directory. Values set via ldflags win.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	f, err := os.Open(filepath.Join(filepath.Dir(exe), ".version"))
	if err != nil {
		return
	}
	defer f.Close()
	loadVersionFrom(f)
}

// loadVersionFrom parses key=value lines (version, build, commit). Blank
// lines and #-comments are skipped; unknown keys are ignored.
func loadVersionFrom(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "version":
			if Version == "dev" {
				Version = val
			}
		case "build":
			if Build == "unknown" {
				Build = val
			}
		case "commit":
			if GitCommit == "unknown" {
				GitCommit = val
			}
		}
	}
}
