// Package mysql provides the MySQL driver backed by go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/dagu-org/sqljson/internal/database"
	"github.com/dagu-org/sqljson/internal/projector"
	"github.com/go-sql-driver/mysql"
)

const defaultPort = "3306"

// MySQLDriver implements the Driver interface for MySQL and MariaDB.
type MySQLDriver struct{}

var _ database.Driver = (*MySQLDriver)(nil)

// Name returns the driver name.
func (d *MySQLDriver) Name() string {
	return "mysql"
}

// Aliases returns alternative driver names.
func (d *MySQLDriver) Aliases() []string {
	return []string{"mariadb"}
}

// Match reports whether url is a MySQL or MariaDB connection url.
func (d *MySQLDriver) Match(url string) bool {
	return database.HasScheme(url, "mysql://", "mariadb://")
}

// Open establishes a connection to MySQL.
func (d *MySQLDriver) Open(ctx context.Context, url string) (*sql.DB, error) {
	dsn, err := DSN(url)
	if err != nil {
		return nil, err
	}
	return database.OpenDB(ctx, "mysql", dsn)
}

// ColumnKind maps MySQL type names.
func (d *MySQLDriver) ColumnKind(ct *sql.ColumnType) projector.Kind {
	return ColumnKind(ct.DatabaseTypeName())
}

// ConvertValue decodes BIT values and passes other MySQL values through
// unchanged; text protocol values arrive as []byte and are parsed by the
// projector.
func (d *MySQLDriver) ConvertValue(col projector.Column, v any) (any, error) {
	if b, ok := v.([]byte); ok && projector.NormalizeTypeName(col.TypeName) == "BIT" {
		return BitValue(b), nil
	}
	return v, nil
}

// ColumnKind maps a MySQL type name such as "UNSIGNED BIGINT" or "SET" to a
// projector kind.
func ColumnKind(typeName string) projector.Kind {
	switch projector.NormalizeTypeName(typeName) {
	case "SET":
		return projector.KindText
	case "BIT":
		// The column width is not reported, so BIT(1) and BIT(n) are told
		// apart by value.
		return projector.KindDynamic
	}
	return projector.ParseKind(typeName)
}

// BitValue decodes the big-endian bytes of a BIT value. A single byte
// holding 0 or 1 is a boolean; anything wider is an unsigned integer.
func BitValue(b []byte) any {
	if len(b) == 1 && b[0] <= 1 {
		return b[0] == 1
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return n
}

// jdbcParams are connection properties of the JDBC driver that have no
// go-sql-driver counterpart and would otherwise be sent as system variables.
var jdbcParams = map[string]bool{
	"useunicode":           true,
	"characterencoding":    true,
	"servertimezone":       true,
	"zerodatetimebehavior": true,
	"autoreconnect":        true,
	"usessl":               true,
}

// DSN converts a mysql:// url into a go-sql-driver data source name.
// Credentials are taken from the url's user info or from the "user" and
// "password" query parameters. A value that is not a url is validated as a
// native DSN and returned in canonical form.
func DSN(rawURL string) (string, error) {
	if !database.HasScheme(rawURL, "mysql://", "mariadb://") {
		cfg, err := mysql.ParseDSN(rawURL)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		return cfg.FormatDSN(), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}

	query := u.Query()
	user, password := query.Get("user"), query.Get("password")
	query.Del("user")
	query.Del("password")
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			password = p
		}
	}

	params := url.Values{}
	for key, values := range query {
		lower := strings.ToLower(key)
		if !jdbcParams[lower] {
			params[key] = values
			continue
		}
		if lower == "usessl" && strings.EqualFold(query.Get(key), "true") {
			params.Set("tls", "true")
		}
	}

	// Parsing the parameters through ParseDSN applies the driver's own
	// handling of known options such as parseTime, charset and tls.
	base := "/"
	if encoded := params.Encode(); encoded != "" {
		base += "?" + encoded
	}
	cfg, err := mysql.ParseDSN(base)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url parameters: %w", err)
	}

	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	if host := u.Hostname(); host != "" {
		port := u.Port()
		if port == "" {
			port = defaultPort
		}
		cfg.Addr = net.JoinHostPort(host, port)
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	return cfg.FormatDSN(), nil
}

func init() {
	database.RegisterDriver(&MySQLDriver{})
}
