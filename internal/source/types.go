package source

import "context"

// TableInfo is a single column record. The name follows the catalog it
// was read from: each record belongs to a table and carries one column.
type TableInfo struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
	Type   string `json:"type" yaml:"type"`
}

// DatabaseInfo is a point-in-time snapshot of a database's columns, in
// table order and, within a table, column ordinal order.
type DatabaseInfo struct {
	Name   string      `json:"name" yaml:"name"`
	Tables []TableInfo `json:"tables" yaml:"tables"`
}

// TableNames returns the distinct table names in the order they first
// appear.
func (d *DatabaseInfo) TableNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, t := range d.Tables {
		if seen[t.Table] {
			continue
		}
		seen[t.Table] = true
		names = append(names, t.Table)
	}
	return names
}

// Columns returns the records for the given table in ordinal order.
func (d *DatabaseInfo) Columns(table string) []TableInfo {
	var cols []TableInfo
	for _, t := range d.Tables {
		if t.Table == table {
			cols = append(cols, t)
		}
	}
	return cols
}

type Inspector interface {
	Name() string
	Inspect(ctx context.Context) (*DatabaseInfo, error)
}
