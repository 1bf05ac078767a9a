package common

import (
	"strings"
	"testing"
)

func TestLoadVersionFrom(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	defer func() {
		Version, Build, GitCommit = origVersion, origBuild, origCommit
	}()

	Version, Build, GitCommit = "dev", "unknown", "unknown"
	loadVersionFrom(strings.NewReader(`
# release metadata
version = v0.2.0
build = 2026-08-31T10:00:00Z
commit = abc1234
ignored = value
`))

	if Version != "v0.2.0" {
		t.Errorf("Version = %q, want v0.2.0", Version)
	}
	if Build != "2026-08-31T10:00:00Z" {
		t.Errorf("Build = %q", Build)
	}
	if GitCommit != "abc1234" {
		t.Errorf("GitCommit = %q", GitCommit)
	}
}

func TestLoadVersionFromDoesNotOverrideStamped(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	defer func() {
		Version, Build, GitCommit = origVersion, origBuild, origCommit
	}()

	Version, Build, GitCommit = "v1.0.0", "unknown", "unknown"
	loadVersionFrom(strings.NewReader("version = v0.1.0\nbuild = b1\n"))

	if Version != "v1.0.0" {
		t.Errorf("stamped Version overridden: %q", Version)
	}
	if Build != "b1" {
		t.Errorf("Build = %q, want fallback b1", Build)
	}
}
