package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data := make([]byte, 0, n*2)
	for range n {
		data = append(data, "x\n"...)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestCollectLineCounts(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "cmd", "corkboard", "main.go"), 3)
	writeLines(t, filepath.Join(root, "internal", "sqlite", "backend.go"), 10)
	writeLines(t, filepath.Join(root, "internal", "sqlite", "backend_test.go"), 4)
	writeLines(t, filepath.Join(root, "pkg", "types", "person.go"), 7)
	writeLines(t, filepath.Join(root, "pkg", "types", "notes.md"), 50)
	writeLines(t, filepath.Join(root, "pkg", "_scratch", "skip.go"), 99)
	writeLines(t, filepath.Join(root, "_examples", "other", "skip.go"), 99)

	counts, err := collectLineCounts(root)
	require.NoError(t, err)

	assert.Equal(t, map[string]lineCount{
		"cmd/corkboard":   {prod: 3},
		"internal/sqlite": {prod: 10, test: 4},
		"pkg/types":       {prod: 7},
	}, counts)
	assert.Equal(t, []string{"cmd/corkboard", "internal/sqlite", "pkg/types"}, sortedKeys(counts))
}
