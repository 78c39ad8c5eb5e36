package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

type Inspector struct {
	db      *sql.DB
	name    string
	schema  string
	timeout time.Duration
	log     logrus.FieldLogger
}

var _ source.Inspector = (*Inspector)(nil)

// NewInspector connects to the schema named in dsn. The DSN must select
// a database; the password never appears in the inspector's Name.
func NewInspector(ctx context.Context, dsn string, log logrus.FieldLogger) (*Inspector, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", source.ErrConnection, err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("%w: dsn must name a database", source.ErrMissingArgument)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrConnection, err)
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: mysql ping failed: %w", source.ErrConnection, err)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Inspector{
		db:      db,
		name:    fmt.Sprintf("mysql:%s/%s", cfg.Addr, cfg.DBName),
		schema:  cfg.DBName,
		timeout: 5 * time.Second,
		log:     log,
	}, nil
}

func (i *Inspector) Name() string {
	return i.name
}

func (i *Inspector) Close() error {
	return i.db.Close()
}

func (i *Inspector) FetchTableNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	names, err := source.QueryRows(ctx, i.db, source.ScanString, `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
	`, i.schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

func (i *Inspector) FetchSchema(ctx context.Context, tableName string) ([]source.TableInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	decode := func(rows *sql.Rows) (source.TableInfo, error) {
		col := source.TableInfo{Table: tableName}
		err := rows.Scan(&col.Column, &col.Type)
		return col, err
	}
	cols, err := source.QueryRows(ctx, i.db, decode, `
		SELECT COLUMN_NAME, COLUMN_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, i.schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", tableName, err)
	}
	return cols, nil
}
