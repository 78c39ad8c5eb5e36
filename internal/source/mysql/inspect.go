package mysql

import (
	"context"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

func (i *Inspector) Inspect(ctx context.Context) (*source.DatabaseInfo, error) {
	tables, err := i.FetchTableNames(ctx)
	if err != nil {
		return nil, err
	}

	info := &source.DatabaseInfo{
		Name:   i.name,
		Tables: []source.TableInfo{},
	}
	for _, tableName := range tables {
		cols, err := i.FetchSchema(ctx, tableName)
		if err != nil {
			return nil, err
		}
		info.Tables = append(info.Tables, cols...)
	}

	i.log.WithField("source", i.name).Debugf("inspected %d tables", len(tables))
	return info, nil
}
