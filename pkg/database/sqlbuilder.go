package database

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// MaxRowsPerInsert keeps multi-row inserts well under PostgreSQL's 65535 bind parameter limit.
const MaxRowsPerInsert = 1000

type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{
		sqlbuilder.PostgreSQL.NewInsertBuilder(),
	}
}

func (ib *InsertBuilder) InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.InsertInto(table)}
}

func (ib *InsertBuilder) Cols(col ...string) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.Cols(col...)}
}

func (ib *InsertBuilder) Values(value ...any) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.Values(value...)}
}

// OnConflictDoNothing appends an upsert-ignore clause. With no columns any
// unique violation is ignored; with columns only that constraint target is.
// Must be called after all Values.
func (ib *InsertBuilder) OnConflictDoNothing(columns ...string) *InsertBuilder {
	if len(columns) == 0 {
		ib.SQL("ON CONFLICT DO NOTHING")
		return ib
	}
	ib.SQL(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(columns, ", ")))
	return ib
}

func (ib *InsertBuilder) Build() (sql string, args []any) {
	return ib.InsertBuilder.Build()
}

// BulkInsert splits rows into multi-row INSERT statements of at most
// MaxRowsPerInsert rows each.
type BulkInsert struct {
	Table           string
	Columns         []string
	IgnoreConflicts bool
	ConflictColumns []string
	rows            [][]any
}

func NewBulkInsert(table string, columns ...string) *BulkInsert {
	return &BulkInsert{Table: table, Columns: columns}
}

// OnConflictDoNothing marks the statements as upsert-ignore on the given columns.
func (b *BulkInsert) OnConflictDoNothing(columns ...string) *BulkInsert {
	b.IgnoreConflicts = true
	b.ConflictColumns = columns
	return b
}

func (b *BulkInsert) Add(values ...any) *BulkInsert {
	b.rows = append(b.rows, values)
	return b
}

func (b *BulkInsert) Len() int {
	return len(b.rows)
}

// Statements returns one query/args pair per chunk of rows.
func (b *BulkInsert) Statements() []Statement {
	statements := make([]Statement, 0, len(b.rows)/MaxRowsPerInsert+1)
	for start := 0; start < len(b.rows); start += MaxRowsPerInsert {
		end := start + MaxRowsPerInsert
		if end > len(b.rows) {
			end = len(b.rows)
		}

		ib := NewInsertBuilder()
		ib.InsertInto(b.Table).Cols(b.Columns...)
		for _, row := range b.rows[start:end] {
			ib.Values(row...)
		}
		if b.IgnoreConflicts {
			ib.OnConflictDoNothing(b.ConflictColumns...)
		}

		query, args := ib.Build()
		statements = append(statements, Statement{Query: query, Args: args})
	}
	return statements
}

// Statement is a built query and its bind arguments.
type Statement struct {
	Query string
	Args  []any
}

type SelectBuilder struct {
	*sqlbuilder.SelectBuilder
}

func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{sqlbuilder.PostgreSQL.NewSelectBuilder()}
}

// AnyOf renders "column = ANY($n)" with value bound as a single array argument.
func (sb *SelectBuilder) AnyOf(column string, value any) string {
	return fmt.Sprintf("%s = ANY(%s)", column, sb.Var(value))
}

// Struct builds statements from a row struct's db tags.
type Struct struct {
	*sqlbuilder.Struct
}

func NewStruct(v any) *Struct {
	return &Struct{sqlbuilder.NewStruct(v).For(sqlbuilder.PostgreSQL)}
}

func (s *Struct) SelectFrom(table string) *SelectBuilder {
	return &SelectBuilder{s.Struct.SelectFrom(table)}
}
