// Package test provides helpers for tests that run commands against
// throwaway databases and job files.
package test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/dagu-org/sqljson/internal/database/drivers/sqlite" // Register the sqlite driver
)

// Helper holds a temporary working directory and an empty config file so
// tests do not read the user's configuration.
type Helper struct {
	Context    context.Context
	Dir        string
	ConfigFile string
}

// Setup creates a new Helper.
func Setup(t *testing.T) Helper {
	t.Helper()

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, nil, 0600))

	return Helper{
		Context:    context.Background(),
		Dir:        dir,
		ConfigFile: configFile,
	}
}

// Path returns name resolved against the helper directory.
func (h Helper) Path(name string) string {
	return filepath.Join(h.Dir, name)
}

// CreateFile writes content to name inside the helper directory.
func (h Helper) CreateFile(t *testing.T, name, content string) string {
	t.Helper()

	path := h.Path(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// CreateSQLite creates a sqlite database file and runs the statements on it.
func (h Helper) CreateSQLite(t *testing.T, name string, statements ...string) string {
	t.Helper()

	path := h.Path(name)
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range statements {
		_, err := db.ExecContext(h.Context, stmt)
		require.NoError(t, err)
	}
	return path
}

// ReadFile returns the content of name inside the helper directory.
func (h Helper) ReadFile(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(h.Path(name))
	require.NoError(t, err)
	return string(data)
}
