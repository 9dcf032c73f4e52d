package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL combines a base postgres URL with a database name.
// sslmode=disable is added when the URL does not set it. Existing query
// parameters are preserved. A base URL that cannot be parsed is returned as-is.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return baseURL
	}
	u.Path = "/" + databaseName

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()

	return u.String()
}
