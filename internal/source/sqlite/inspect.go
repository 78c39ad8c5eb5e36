package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

const (
	tableNamesQuery = `SELECT name FROM sqlite_master WHERE type = 'table'`
	columnsQuery    = `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`
)

// Introspect reads the column layout of the SQLite file at path with the
// default driver.
func Introspect(ctx context.Context, path string) (*source.DatabaseInfo, error) {
	return NewInspector(path).Inspect(ctx)
}

// Inspect lists every column of every table. Tables come in catalog
// order and columns in ordinal order. Any failure aborts the whole call.
func (i *Inspector) Inspect(ctx context.Context) (*source.DatabaseInfo, error) {
	if i.path == "" {
		return nil, fmt.Errorf("%w: need path to db", source.ErrMissingArgument)
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	log := i.log.WithFields(logrus.Fields{"path": i.path, "driver": i.driver})

	db, err := i.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := i.FetchTableNames(ctx, db)
	if err != nil {
		return nil, err
	}

	info := &source.DatabaseInfo{
		Name:   i.path,
		Tables: []source.TableInfo{},
	}
	for _, table := range tables {
		cols, err := i.FetchColumns(ctx, db, table)
		if err != nil {
			return nil, err
		}
		log.WithField("table", table).Debugf("read %d columns", len(cols))
		info.Tables = append(info.Tables, cols...)
	}

	log.Debugf("inspected %d tables", len(tables))
	return info, nil
}

func (i *Inspector) FetchTableNames(ctx context.Context, db source.Querier) ([]string, error) {
	names, err := source.QueryRows(ctx, db, source.ScanString, tableNamesQuery)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

func (i *Inspector) FetchColumns(ctx context.Context, db source.Querier, table string) ([]source.TableInfo, error) {
	decode := func(rows *sql.Rows) (source.TableInfo, error) {
		col := source.TableInfo{Table: table}
		err := rows.Scan(&col.Column, &col.Type)
		return col, err
	}
	cols, err := source.QueryRows(ctx, db, decode, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	return cols, nil
}
