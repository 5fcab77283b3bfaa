package migrations

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var filenamePattern = regexp.MustCompile(`^(\d{3})_([a-z0-9_]+)\.(up|down)\.sql$`)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := fs.Glob(FS(), "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	seen := map[string]map[string]bool{}
	for _, name := range names {
		m := filenamePattern.FindStringSubmatch(name)
		require.NotNil(t, m, "unexpected migration filename %s", name)
		key := m[1] + "_" + m[2]
		if seen[key] == nil {
			seen[key] = map[string]bool{}
		}
		seen[key][m[3]] = true
	}
	for key, dirs := range seen {
		assert.True(t, dirs["up"] && dirs["down"], "migration %s must have up and down files", key)
	}
}

func TestSchemaCreatesWarehouseTables(t *testing.T) {
	data, err := fs.ReadFile(FS(), "001_create_tables.up.sql")
	require.NoError(t, err)

	for _, table := range []string{"csr_raw", "sr_categories", "community_areas_processed", "csr_processed", "csr_processed_backup", "dates"} {
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
	assert.False(t, strings.Contains(string(data), "DROP"), "up migration must not drop tables")
}
