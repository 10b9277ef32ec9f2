package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
)

func TestBuildListFilter_Empty(t *testing.T) {
	whereSQL, args := buildListFilter(persistence.ListOptions{})

	assert.Empty(t, whereSQL)
	assert.Empty(t, args)
}

func TestBuildListFilter_AllFilters(t *testing.T) {
	status := models.WorkflowStatusActive

	whereSQL, args := buildListFilter(persistence.ListOptions{
		Status: &status,
		Tag:    "content",
		Query:  "newsletter",
	})

	assert.Equal(t,
		" WHERE status = $1 AND snapshot -> 'tags' @> to_jsonb($2::text) AND name ILIKE '%' || $3 || '%'",
		whereSQL)
	require.Len(t, args, 3)
	assert.Equal(t, "active", args[0])
	assert.Equal(t, "content", args[1])
	assert.Equal(t, "newsletter", args[2])
}

func TestSortColumn_MapsValidatedFields(t *testing.T) {
	assert.Equal(t, "created_at", sortColumn("created_at"))
	assert.Equal(t, "updated_at", sortColumn("updated_at"))
	assert.Equal(t, "name", sortColumn("name"))
}

func TestSortDirection(t *testing.T) {
	assert.Equal(t, "ASC", sortDirection("asc"))
	assert.Equal(t, "DESC", sortDirection("desc"))
	assert.Equal(t, "DESC", sortDirection(""))
}

func TestMigrations_VersionsAreContiguous(t *testing.T) {
	all := migrations()

	require.NotEmpty(t, all)

	for version := 1; version <= len(all); version++ {
		sql, ok := all[version]
		require.True(t, ok, "missing migration version %d", version)
		assert.NotEmpty(t, sql)
	}
}
