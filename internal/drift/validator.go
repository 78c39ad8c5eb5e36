package drift

import (
	"fmt"
	"strings"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

type Issue struct {
	Kind     string
	Severity string
	Table    string
	Column   string
	FromType string
	ToType   string
	Message  string
}

func (i Issue) String() string {
	target := i.Table
	if i.Column != "" {
		target += "." + i.Column
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, target, i.Message)
}

type Report struct {
	Old    string
	New    string
	Issues []Issue
}

// HasBlocking reports whether any issue is BLOCK.
func (r *Report) HasBlocking() bool {
	return r.MaxSeverity() == SeverityBlock
}

// MaxSeverity returns the highest severity in the report, or "" if
// there are no issues.
func (r *Report) MaxSeverity() string {
	top := ""
	for _, iss := range r.Issues {
		if top == "" || severityRank[iss.Severity] > severityRank[top] {
			top = iss.Severity
		}
	}
	return top
}

func (r *Report) String() string {
	if len(r.Issues) == 0 {
		return fmt.Sprintf("No drift between %s and %s\n", r.Old, r.New)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Drift between %s and %s:\n", r.Old, r.New)
	for _, iss := range r.Issues {
		b.WriteString(iss.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Compare reports how newInfo differs from oldInfo. Issues follow the
// old snapshot's table order, then tables only present in newInfo; inside
// a table, old column order, then added columns.
func Compare(oldInfo, newInfo *source.DatabaseInfo) *Report {
	report := &Report{Old: oldInfo.Name, New: newInfo.Name}

	newTables := map[string]bool{}
	for _, name := range newInfo.TableNames() {
		newTables[name] = true
	}

	oldTables := oldInfo.TableNames()
	for _, table := range oldTables {
		if !newTables[table] {
			report.add(KindTableRemoved, table, "", "", "")
			continue
		}
		report.compareColumns(table, oldInfo.Columns(table), newInfo.Columns(table))
	}

	oldSet := map[string]bool{}
	for _, table := range oldTables {
		oldSet[table] = true
	}
	for _, table := range newInfo.TableNames() {
		if oldSet[table] {
			continue
		}
		report.add(KindTableAdded, table, "", "", "")
	}
	return report
}

func (r *Report) compareColumns(table string, oldCols, newCols []source.TableInfo) {
	newByName := map[string]source.TableInfo{}
	for _, col := range newCols {
		newByName[col.Column] = col
	}
	oldByName := map[string]bool{}

	for _, col := range oldCols {
		oldByName[col.Column] = true
		nc, ok := newByName[col.Column]
		if !ok {
			r.add(KindColumnRemoved, table, col.Column, col.Type, "")
			continue
		}
		if !strings.EqualFold(col.Type, nc.Type) {
			r.add(KindTypeChanged, table, col.Column, col.Type, nc.Type)
		}
	}
	for _, col := range newCols {
		if !oldByName[col.Column] {
			r.add(KindColumnAdded, table, col.Column, "", col.Type)
		}
	}
}

func (r *Report) add(kind, table, column, from, to string) {
	r.Issues = append(r.Issues, Issue{
		Kind:     kind,
		Severity: SeverityForChange(kind),
		Table:    table,
		Column:   column,
		FromType: from,
		ToType:   to,
		Message:  MessageForChange(kind, from, to),
	})
}
