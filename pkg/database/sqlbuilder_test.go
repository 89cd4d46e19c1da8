package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkInsert(t *testing.T) {
	t.Run("should build nothing for an empty insert", func(t *testing.T) {
		b := NewBulkInsert("platforms", "name")

		assert.Equal(t, 0, b.Len())
		assert.Empty(t, b.Statements())
	})

	t.Run("should build one multi-row statement", func(t *testing.T) {
		b := NewBulkInsert("platforms", "name").Add("Amazon").Add("Flipkart")

		statements := b.Statements()
		require.Len(t, statements, 1)
		assert.True(t, strings.HasPrefix(statements[0].Query, "INSERT INTO platforms (name) VALUES"))
		assert.Contains(t, statements[0].Query, "$2")
		assert.NotContains(t, statements[0].Query, "ON CONFLICT")
		assert.Equal(t, []any{"Amazon", "Flipkart"}, statements[0].Args)
	})

	t.Run("should ignore conflicts on the given columns", func(t *testing.T) {
		b := NewBulkInsert("customers", "id", "name").OnConflictDoNothing("id").Add("C1", "Ann")

		statements := b.Statements()
		require.Len(t, statements, 1)
		assert.True(t, strings.HasSuffix(statements[0].Query, "ON CONFLICT (id) DO NOTHING"))
	})

	t.Run("should ignore any conflict without columns", func(t *testing.T) {
		b := NewBulkInsert("order_lines", "order_id").OnConflictDoNothing().Add("O1")

		statements := b.Statements()
		require.Len(t, statements, 1)
		assert.True(t, strings.HasSuffix(statements[0].Query, "ON CONFLICT DO NOTHING"))
	})

	t.Run("should split rows into chunks", func(t *testing.T) {
		b := NewBulkInsert("products", "id", "name")
		for i := 0; i < MaxRowsPerInsert*2+5; i++ {
			b.Add(i, "p")
		}

		statements := b.Statements()
		require.Len(t, statements, 3)
		assert.Len(t, statements[0].Args, MaxRowsPerInsert*2)
		assert.Len(t, statements[1].Args, MaxRowsPerInsert*2)
		assert.Len(t, statements[2].Args, 10)
		assert.Equal(t, 0, statements[0].Args[0])
		assert.Equal(t, MaxRowsPerInsert*2, statements[2].Args[0])
	})
}

func TestSelectBuilder(t *testing.T) {
	t.Run("should bind AnyOf as a single argument", func(t *testing.T) {
		sb := NewSelectBuilder()
		sb.Select("id").From("platforms").Where(sb.AnyOf("name", []string{"Amazon", "Flipkart"}))

		query, args := sb.Build()
		assert.Equal(t, "SELECT id FROM platforms WHERE name = ANY($1)", query)
		require.Len(t, args, 1)
	})
}
