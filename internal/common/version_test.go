package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVersionFile_OnlyFillsDefaults(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })

	Version, Build, GitCommit = "dev", "2025-01-01", "unknown"

	path := filepath.Join(t.TempDir(), ".version")
	require.NoError(t, os.WriteFile(path, []byte("# build info\nversion: 1.4.0\nbuild: 2025-06-01\ncommit: abc123\n"), 0o644))

	loadVersionFile(path)

	assert.Equal(t, "1.4.0", Version)
	assert.Equal(t, "2025-01-01", Build, "ldflags value must win over the file")
	assert.Equal(t, "abc123", GitCommit)
	assert.Equal(t, VersionInfo{Version: "1.4.0", Build: "2025-01-01", GitCommit: "abc123"}, GetVersionInfo())
}

func TestPrintBanner(t *testing.T) {
	var b strings.Builder
	PrintBanner(&b, NewDefaultConfig(), NewSilentLogger())
	out := b.String()
	assert.Contains(t, out, "Base currency")
	assert.Contains(t, out, "BRL")
	assert.Contains(t, out, "^BVSP")
}
