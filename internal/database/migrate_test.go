package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	var up, down int

	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}

	assert.Positive(t, up)
	assert.Equal(t, up, down, "every up migration needs a down migration")
}

func TestInitMigrationConstraints(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)

	sql := string(b)
	assert.Contains(t, sql, "NUMERIC(12, 2)")
	assert.Contains(t, sql, "CHECK (type IN ('income', 'expense'))")
	assert.Contains(t, sql, "name       VARCHAR(100) NOT NULL UNIQUE")
}
