package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

// Registered driver names.
const (
	DriverPure = "sqlite"  // modernc.org/sqlite
	DriverCGo  = "sqlite3" // github.com/mattn/go-sqlite3

	DefaultDriver = DriverPure
)

type Inspector struct {
	path    string
	driver  string
	timeout time.Duration
	log     logrus.FieldLogger
}

var _ source.Inspector = (*Inspector)(nil)

type Option func(*Inspector)

// WithDriver selects the database/sql driver. An empty name keeps the
// default.
func WithDriver(name string) Option {
	return func(i *Inspector) {
		if name != "" {
			i.driver = name
		}
	}
}

// WithTimeout bounds a whole Inspect call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Inspector) { i.timeout = d }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(i *Inspector) {
		if log != nil {
			i.log = log
		}
	}
}

func NewInspector(path string, opts ...Option) *Inspector {
	i := &Inspector{
		path:   path,
		driver: DefaultDriver,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Inspector) Name() string {
	return "sqlite"
}

// open connects read-only so a missing file is reported instead of
// created. Reading the schema version forces SQLite to parse the file
// header, which rejects files that are not databases.
func (i *Inspector) open(ctx context.Context) (*sql.DB, error) {
	dsn, err := readOnlyDSN(i.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", source.ErrConnection, i.path, err)
	}

	db, err := sql.Open(i.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", source.ErrConnection, i.path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %w", source.ErrConnection, i.path, err)
	}

	var version int64
	if err := db.QueryRowContext(ctx, "PRAGMA schema_version").Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %w", source.ErrConnection, i.path, err)
	}
	return db, nil
}

func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths need a leading slash in a file URI.
		p = "/" + p
	}
	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: "mode=ro",
	}
	return u.String(), nil
}
