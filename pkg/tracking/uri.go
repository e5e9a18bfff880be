// Package tracking resolves a tracking URI into a ports.TrackingStore.
//
// Supported schemes:
//
//	sqlite:///relative/path.db    (three slashes: path relative to the working directory)
//	sqlite:////absolute/path.db   (four slashes: absolute path)
//	redis://[:password@]host:port[/db]
//	memory://
package tracking

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aretw0/regtrain/pkg/adapters/memory"
	"github.com/aretw0/regtrain/pkg/adapters/redis"
	"github.com/aretw0/regtrain/pkg/adapters/sqlite"
	"github.com/aretw0/regtrain/pkg/ports"
)

// DefaultURI is the local SQLite database next to the working directory.
const DefaultURI = "sqlite:///mlflow.db"

// Open returns the store addressed by uri. The caller owns the store and must Close it.
func Open(uri string) (ports.TrackingStore, error) {
	if uri == "" {
		uri = DefaultURI
	}

	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, fmt.Errorf("invalid tracking uri %q: missing scheme", uri)
	}

	switch scheme {
	case "sqlite":
		path, err := SQLitePath(rest)
		if err != nil {
			return nil, err
		}
		return sqlite.Open(path)

	case "redis":
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid redis uri: %w", err)
		}
		password, _ := u.User.Password()
		db := 0
		if p := strings.Trim(u.Path, "/"); p != "" {
			db, err = strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid redis db %q: %w", p, err)
			}
		}
		var opts []redis.Option
		if prefix := u.Query().Get("prefix"); prefix != "" {
			opts = append(opts, redis.WithPrefix(prefix))
		}
		return redis.New(u.Host, password, db, opts...), nil

	case "memory":
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unsupported tracking uri scheme %q", scheme)
	}
}

// SQLitePath converts the part after "sqlite://" into a filesystem path.
func SQLitePath(rest string) (string, error) {
	if !strings.HasPrefix(rest, "/") {
		return "", fmt.Errorf("invalid sqlite uri: expected sqlite:///<path>, got sqlite://%s", rest)
	}
	path := strings.TrimPrefix(rest, "/")
	if path == "" {
		return "", fmt.Errorf("invalid sqlite uri: empty path")
	}
	return path, nil
}
