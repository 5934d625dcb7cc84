package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const scheme = "sqlite://"

// parseDSN turns a sqlite:// project DSN into a driver path. Relative paths
// are anchored at the working directory and an optional query string is
// passed through to the driver.
func parseDSN(dsn string) (string, error) {
	rest, ok := strings.CutPrefix(dsn, scheme)
	if !ok {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected %s", scheme)
	}
	if rest == ":memory:" {
		return rest, nil
	}

	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return "", fmt.Errorf("sqlite DSN has no database path")
	}
	path, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}

	if query != "" {
		return path + "?" + query, nil
	}
	return path, nil
}
