// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestCreateSchema(t *testing.T) {
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	defer conn.Close()

	require.NoError(t, CreateSchema(conn))
	require.NoError(t, CreateSchema(conn), "second run is a no-op")

	for _, table := range Tables {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	_, err = conn.Exec(`INSERT INTO poll (id, title, created_by, voting_format) VALUES ('p', 't', 'c', 'approval')`)
	assert.Error(t, err, "voting_format is constrained")
}
