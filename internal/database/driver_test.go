package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/dagu-org/sqljson/internal/projector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDriver implements Driver interface for testing.
type mockDriver struct {
	name    string
	aliases []string
	scheme  string
}

func (d *mockDriver) Name() string          { return d.name }
func (d *mockDriver) Aliases() []string     { return d.aliases }
func (d *mockDriver) Match(url string) bool { return strings.HasPrefix(url, d.scheme) }
func (d *mockDriver) Open(_ context.Context, _ string) (*sql.DB, error) {
	return nil, nil
}
func (d *mockDriver) ColumnKind(ct *sql.ColumnType) projector.Kind { return DefaultColumnKind(ct) }
func (d *mockDriver) ConvertValue(_ projector.Column, v any) (any, error) {
	return v, nil
}

func newTestRegistry() *DriverRegistry {
	r := NewDriverRegistry()
	r.Register(&mockDriver{name: "postgres", aliases: []string{"pgx", "PostgreSQL"}, scheme: "postgres://"})
	r.Register(&mockDriver{name: "pq", scheme: "postgres://"})
	r.Register(&mockDriver{name: "sqlite", scheme: "sqlite:"})
	return r
}

func TestDriverRegistry_Get(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"postgres", "postgres", true},
		{"pgx", "postgres", true},
		{"postgresql", "postgres", true},
		{" SQLite ", "sqlite", true},
		{"pq", "pq", true},
		{"oracle", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			driver, ok := r.Get(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, driver.Name())
			}
		})
	}
}

func TestDriverRegistry_Names(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()
	assert.Equal(t, []string{"postgres", "pq", "sqlite"}, r.Names())
}

func TestDriverRegistry_Resolve(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	tests := []struct {
		name   string
		driver string
		url    string
		want   string
	}{
		{"explicit name wins", "pq", "postgres://db/x", "pq"},
		{"explicit alias", "pgx", "sqlite:foo.db", "postgres"},
		{"inferred from url", "", "sqlite:foo.db", "sqlite"},
		{"first match by name", "", "postgres://db/x", "postgres"},
		{"jdbc prefix", "", "jdbc:sqlite:foo.db", "sqlite"},
		{"upper case jdbc prefix", "", "JDBC:postgres://db/x", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			driver, err := r.Resolve(tt.driver, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, driver.Name())
		})
	}
}

func TestDriverRegistry_ResolveErrors(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	_, err := r.Resolve("oracle", "postgres://db/x")
	assert.ErrorIs(t, err, ErrDriverNotFound)
	assert.Contains(t, err.Error(), "postgres, pq, sqlite")

	_, err = r.Resolve("", "oracle:thin:@db:1521/x")
	assert.ErrorIs(t, err, ErrNoDriverForURL)
}

func TestStripJDBC(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "mysql://h/db", StripJDBC("jdbc:mysql://h/db"))
	assert.Equal(t, "mysql://h/db", StripJDBC("mysql://h/db"))
	assert.Equal(t, "jdb", StripJDBC("jdb"))
}

func TestHasScheme(t *testing.T) {
	t.Parallel()
	assert.True(t, HasScheme("PostgreSQL://h/db", "postgres://", "postgresql://"))
	assert.False(t, HasScheme("mysql://h/db", "postgres://", "postgresql://"))
}
