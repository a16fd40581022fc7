package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// getBinaryPath returns the path to the screener binary, skipping when it has not been built.
func getBinaryPath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "screener")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}
	return binaryPath
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const (
	testJob   = "Backend engineer. We need Python, Docker and PostgreSQL experience."
	testAlice = "Alice Smith\nalice@example.com\n5 years building Python services shipped with Docker."
	testBob   = "Bob Jones\nbob@example.com\n8 years of Python, Docker and Postgres."
)
