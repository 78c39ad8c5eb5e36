package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source/sqlite"
)

func createDB(t *testing.T, name string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open(sqlite.DriverPure, path)
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"sqlschema"}, args...), &out)
	return out.String(), err
}

func TestSchema_Text(t *testing.T) {
	path := createDB(t, "users.db", "CREATE TABLE users (id INTEGER, name TEXT)")

	out, err := runCLI(t, "schema", path)
	require.NoError(t, err)
	assert.Equal(t, "Table: users Type: INTEGER\nTable: users Type: TEXT\n", out)
}

func TestSchema_JSON(t *testing.T) {
	path := createDB(t, "ab.db", "CREATE TABLE a (x INT)", "CREATE TABLE b (y TEXT, z BLOB)")

	out, err := runCLI(t, "schema", "--format", "json", path)
	require.NoError(t, err)

	var info source.DatabaseInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, path, info.Name)
	assert.Len(t, info.Tables, 3)
}

func TestSchema_MissingPath(t *testing.T) {
	out, err := runCLI(t, "schema")
	assert.ErrorIs(t, err, source.ErrMissingArgument)
	assert.Empty(t, out)

	_, err = runCLI(t, "schema", "--format", "yaml")
	assert.ErrorIs(t, err, source.ErrMissingArgument)
}

func TestSchema_BadFormat(t *testing.T) {
	path := createDB(t, "users.db", "CREATE TABLE users (id INTEGER)")

	_, err := runCLI(t, "schema", "--format", "xml", path)
	assert.ErrorContains(t, err, "output.format")
}

func TestSchema_ConfigFile(t *testing.T) {
	path := createDB(t, "users.db", "CREATE TABLE users (id INTEGER, name TEXT)")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  format: detailed\nsource:\n  timeout: 5s\n"), 0o644))

	out, err := runCLI(t, "schema", "--config", cfgPath, path)
	require.NoError(t, err)
	assert.Equal(t, "Table: users Column: id Type: INTEGER\nTable: users Column: name Type: TEXT\n", out)
}

func TestDiff(t *testing.T) {
	oldPath := createDB(t, "old.db", "CREATE TABLE users (id INTEGER)")
	newPath := createDB(t, "new.db", "CREATE TABLE users (id INTEGER, name TEXT)")

	out, err := runCLI(t, "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[INFO] users.name: added")

	out, err = runCLI(t, "diff", newPath, oldPath)
	assert.ErrorIs(t, err, errDriftBlocked)
	assert.Contains(t, out, "[BLOCK] users.name")
}

func TestDiff_NeedsTwoTargets(t *testing.T) {
	_, err := runCLI(t, "diff", "only.db")
	assert.ErrorIs(t, err, source.ErrMissingArgument)
}

func TestPublish_RequiresConfig(t *testing.T) {
	_, err := runCLI(t, "publish", "x.db")
	assert.EqualError(t, err, "missing required flag: --config")
}

func TestPublish_RequiresKafkaSettings(t *testing.T) {
	path := createDB(t, "users.db", "CREATE TABLE users (id INTEGER)")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o644))

	_, err := runCLI(t, "publish", "--config", cfgPath, path)
	assert.EqualError(t, err, "kafka.brokers is required")
}

func TestUnknownCommandAndHelp(t *testing.T) {
	_, err := runCLI(t, "frobnicate")
	assert.EqualError(t, err, "unknown command: frobnicate")

	out, err := runCLI(t, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlschema schema")

	out, err = runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}
