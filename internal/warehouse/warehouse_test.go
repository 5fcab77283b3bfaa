package warehouse

import (
	"strings"
	"testing"
	"time"

	"csr-pipeline/internal/servicerequest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestInsertStatements_Batches(t *testing.T) {
	l := NewLoader(nil).WithBatchSize(2)
	tbl := table{
		name:    TableCategories,
		columns: categoryColumns,
		rows: [][]any{
			{"a", "Streets", "Potholes"},
			{"b", "Streets", "Lights"},
			{"c", "Sanitation", "Graffiti"},
		},
	}

	queries, args, err := l.insertStatements(tbl)
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t,
		`INSERT INTO "sr_categories" ("sr_type","sr_category","sr_subcategory") VALUES ($1,$2,$3),($4,$5,$6)`,
		queries[0])
	assert.Equal(t,
		`INSERT INTO "sr_categories" ("sr_type","sr_category","sr_subcategory") VALUES ($1,$2,$3)`,
		queries[1])
	assert.Len(t, args[0], 6)
	assert.Equal(t, []any{"c", "Sanitation", "Graffiti"}, args[1])
}

func TestInsertStatements_EmptyTable(t *testing.T) {
	queries, args, err := NewLoader(nil).insertStatements(table{name: TableDates, columns: dateColumns})
	require.NoError(t, err)
	assert.Empty(t, queries)
	assert.Empty(t, args)
}

func TestInsertStatements_RespectsParameterLimit(t *testing.T) {
	l := NewLoader(nil).WithBatchSize(100000)
	rows := make([][]any, 4000)
	for i := range rows {
		rows[i] = make([]any, len(rawColumns))
	}
	queries, _, err := l.insertStatements(table{name: TableRaw, columns: rawColumns, rows: rows})
	require.NoError(t, err)
	// 65535 / 19 columns = 3449 rows per statement.
	assert.Len(t, queries, 2)
}

func TestResolvedTable_NullableColumns(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := created.AddDate(0, 0, 3)

	tbl := resolvedTable([]servicerequest.ResolvedRecord{
		{SRNumber: "A1", SRType: "Pothole", Status: servicerequest.StatusOpen, CreatedDate: created, OpenDays: ptr(9), Latitude: 41.8, Longitude: -87.6},
		{SRNumber: "A2", SRType: "Pothole", Status: servicerequest.StatusCompleted, CreatedDate: created, ClosedDate: &closed, CompletionDays: ptr(3), CommunityArea: ptr(8)},
	})

	require.Len(t, tbl.rows, 2)
	require.Len(t, tbl.rows[0], len(resolvedColumns))

	open := tbl.rows[0]
	assert.Equal(t, "Open", open[2])
	assert.Nil(t, open[4], "closed_date")
	assert.Nil(t, open[5], "time_to_complete")
	assert.Nil(t, open[9], "community_area")
	assert.Equal(t, 9, open[12])

	done := tbl.rows[1]
	assert.Equal(t, closed, done[4])
	assert.Equal(t, 3, done[5])
	assert.Equal(t, 8, done[9])
	assert.Nil(t, done[12], "days_open")
}

func TestRawTable_ColumnOrder(t *testing.T) {
	created := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	tbl := rawTable([]servicerequest.RawRecord{{
		SRNumber:    "SR-1",
		SRType:      "Pothole",
		Status:      "Open",
		CreatedDate: created,
		Latitude:    ptr(41.8),
	}})

	require.Len(t, tbl.rows[0], len(rawColumns))
	assert.Equal(t, created, tbl.rows[0][6])
	assert.Nil(t, tbl.rows[0][7], "zero last_modified_date is NULL")
	assert.Equal(t, 41.8, tbl.rows[0][17])
	assert.Nil(t, tbl.rows[0][18])
}

func TestCategoryTable_SortedByType(t *testing.T) {
	tbl := categoryTable(servicerequest.CategoryMapping{
		"Tree Trim":     {Category: "Forestry", SubCategory: "Trees"},
		"Alley Pothole": {Category: "Streets", SubCategory: "Potholes"},
	})
	require.Len(t, tbl.rows, 2)
	assert.Equal(t, "Alley Pothole", tbl.rows[0][0])
	assert.True(t, strings.HasPrefix(tbl.rows[1][0].(string), "Tree"))
}
