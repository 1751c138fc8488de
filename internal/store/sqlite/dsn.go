package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type dsnTarget struct {
	path   string
	memory bool
}

// parseDSN turns sqlite://<path>[?query] into a driver DSN. Relative paths
// are anchored at the working directory. Connection pragmas travel in the
// DSN because SQLite applies them per connection and the pool opens many.
func parseDSN(dsn string) (dsnTarget, error) {
	if !strings.HasPrefix(dsn, "sqlite://") {
		return dsnTarget{}, fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}

	rest := strings.TrimPrefix(dsn, "sqlite://")
	if rest == "" {
		return dsnTarget{}, fmt.Errorf("sqlite DSN is missing a path")
	}

	path, query, _ := strings.Cut(rest, "?")
	memory := path == ":memory:"
	if !memory {
		unescaped, err := url.PathUnescape(path)
		if err != nil {
			return dsnTarget{}, fmt.Errorf("unescaping path: %w", err)
		}
		path = unescaped
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
			path = "./" + path
		}
	}

	params, err := connParams(query, memory)
	if err != nil {
		return dsnTarget{}, err
	}
	return dsnTarget{path: path + "?" + params, memory: memory}, nil
}

// connParams puts the busy timeout and foreign key pragmas ahead of any the
// caller passed. Transactions take the write lock when they begin, unless
// the caller picked another _txlock.
func connParams(query string, memory bool) (string, error) {
	params, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("parsing sqlite DSN query: %w", err)
	}

	pragmas := []string{"busy_timeout(30000)", "foreign_keys(1)"}
	if !memory {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}
	params["_pragma"] = append(pragmas, params["_pragma"]...)
	if !params.Has("_txlock") {
		params.Set("_txlock", "immediate")
	}
	return params.Encode(), nil
}
