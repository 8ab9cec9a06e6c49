package store

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadURL is returned by Open for a URL it cannot map to a backend.
var ErrBadURL = errors.New("unsupported store url")

// Open returns the Store named by rawURL. See the package comment for the
// schemes.
func Open(ctx context.Context, rawURL string, cfg Config) (Store, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return nil, errors.Wrapf(ErrBadURL, "%q has no scheme", rawURL)
	}
	switch scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "sample":
		return NewSampleStore(), nil
	case "csv":
		if rest == "" {
			return nil, errors.Wrapf(ErrBadURL, "%q has no path", rawURL)
		}
		return NewCSVStore(rest), nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return nil, errors.Wrapf(ErrBadURL, "%q has no path", rawURL)
		}
		return NewSQLStore(ctx, DialectSQLite, rest, cfg)
	case "postgres", "postgresql":
		return NewSQLStore(ctx, DialectPostgres, rawURL, cfg)
	case "mongodb", "mongodb+srv":
		return NewMongoStore(ctx, rawURL, cfg)
	case "firestore":
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, errors.Wrap(ErrBadURL, err.Error())
		}
		if u.Host == "" {
			return nil, errors.Wrapf(ErrBadURL, "%q has no project", rawURL)
		}
		return NewFirestoreStore(ctx, u.Host, cfg)
	case "badger":
		return NewBadgerStore(rest)
	}
	return nil, errors.Wrapf(ErrBadURL, "unknown scheme %q", scheme)
}
