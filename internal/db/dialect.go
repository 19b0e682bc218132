package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

type dialect struct {
	driver string
	// open is the name passed to sql.Open.
	open       string
	goose      goose.Dialect
	migrations string
	// match is the WHERE clause for a case-insensitive substring search.
	match     string
	returning bool
	numbered  bool
}

var dialects = map[string]dialect{
	"sqlite3": {
		driver:     "sqlite3",
		open:       sqliteDriver,
		goose:      goose.DialectSQLite3,
		migrations: "migrations/sqlite3",
		match:      `casefold(todo) LIKE casefold(?) ESCAPE '\'`,
		returning:  true,
	},
	"postgres": {
		driver:     "postgres",
		open:       "postgres",
		goose:      goose.DialectPostgres,
		migrations: "migrations/postgres",
		match:      `todo ILIKE ?`,
		returning:  true,
		numbered:   true,
	},
	"mysql": {
		driver:     "mysql",
		open:       "mysql",
		goose:      goose.DialectMySQL,
		migrations: "migrations/mysql",
		match:      `LOWER(todo) LIKE LOWER(?)`,
	},
}

func lookupDialect(driver string) (dialect, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	switch name {
	case "sqlite":
		name = "sqlite3"
	case "postgresql", "pg":
		name = "postgres"
	}
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// rebind rewrites ? placeholders to $n for drivers that need numbered ones.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
