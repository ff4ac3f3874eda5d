package storage

import "context"

// Row is one table record keyed by column name
type Row map[string]interface{}

// TableStore is the minimal table API the service needs: equality select
// and equality update, mirroring a PostgREST `eq` filter.
type TableStore interface {
	// Select returns every row of table where column equals value
	Select(ctx context.Context, table, column, value string) ([]Row, error)

	// Update sets values on every row where column equals value and returns the updated rows
	Update(ctx context.Context, table, column, value string, values Row) ([]Row, error)

	// Close releases connections held by the store
	Close() error
}
