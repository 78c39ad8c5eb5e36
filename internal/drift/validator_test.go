package drift

import (
	"testing"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

func info(name string, cols ...source.TableInfo) *source.DatabaseInfo {
	return &source.DatabaseInfo{Name: name, Tables: cols}
}

func col(table, column, typ string) source.TableInfo {
	return source.TableInfo{Table: table, Column: column, Type: typ}
}

func TestNoDrift(t *testing.T) {
	a := info("a.db", col("t1", "a", "INT"), col("t1", "b", "TEXT"))
	b := info("b.db", col("t1", "a", "int"), col("t1", "b", "TEXT"))
	rep := Compare(a, b)
	if len(rep.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", rep.Issues)
	}
	if rep.MaxSeverity() != "" || rep.HasBlocking() {
		t.Fatalf("expected empty severity, got %q", rep.MaxSeverity())
	}
	if rep.String() != "No drift between a.db and b.db\n" {
		t.Fatalf("unexpected report text %q", rep.String())
	}
}

func TestColumnAdded(t *testing.T) {
	rep := Compare(
		info("old", col("t1", "a", "INT")),
		info("new", col("t1", "a", "INT"), col("t1", "b", "TEXT")),
	)
	if len(rep.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(rep.Issues))
	}
	iss := rep.Issues[0]
	if iss.Severity != SeverityForChange(KindColumnAdded) || iss.Column != "b" || iss.ToType != "TEXT" {
		t.Fatalf("unexpected issue %+v", iss)
	}
	if rep.HasBlocking() {
		t.Fatalf("column_added must not block")
	}
}

func TestColumnRemoved(t *testing.T) {
	rep := Compare(
		info("old", col("t1", "a", "INT"), col("t1", "b", "TEXT")),
		info("new", col("t1", "a", "INT")),
	)
	if len(rep.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(rep.Issues))
	}
	iss := rep.Issues[0]
	if iss.Severity != SeverityBlock || iss.Column != "b" {
		t.Fatalf("unexpected issue %+v", iss)
	}
	if !rep.HasBlocking() {
		t.Fatalf("expected blocking report")
	}
}

func TestTypeChanged(t *testing.T) {
	rep := Compare(
		info("old", col("t1", "a", "INT")),
		info("new", col("t1", "a", "TEXT")),
	)
	if len(rep.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(rep.Issues))
	}
	iss := rep.Issues[0]
	if iss.Severity != SeverityWarn {
		t.Fatalf("expected severity %s, got %s", SeverityWarn, iss.Severity)
	}
	if iss.FromType != "INT" || iss.ToType != "TEXT" {
		t.Fatalf("unexpected types from=%s to=%s", iss.FromType, iss.ToType)
	}
	if iss.Message != "type changed INT -> TEXT" {
		t.Fatalf("unexpected message %q", iss.Message)
	}
}

func TestUntypedToTyped(t *testing.T) {
	rep := Compare(
		info("old", col("t1", "a", "")),
		info("new", col("t1", "a", "BLOB")),
	)
	if len(rep.Issues) != 1 || rep.Issues[0].Message != "type changed (untyped) -> BLOB" {
		t.Fatalf("unexpected issues %v", rep.Issues)
	}
}

func TestTablesAddedAndRemoved(t *testing.T) {
	rep := Compare(
		info("old", col("gone", "x", "INT"), col("kept", "y", "INT")),
		info("new", col("kept", "y", "INT"), col("fresh", "z", "INT")),
	)
	if len(rep.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", rep.Issues)
	}
	if rep.Issues[0].Kind != KindTableRemoved || rep.Issues[0].Table != "gone" {
		t.Fatalf("expected table_removed for gone first, got %+v", rep.Issues[0])
	}
	if rep.Issues[1].Kind != KindTableAdded || rep.Issues[1].Table != "fresh" {
		t.Fatalf("expected table_added for fresh second, got %+v", rep.Issues[1])
	}
	if rep.MaxSeverity() != SeverityBlock {
		t.Fatalf("expected BLOCK, got %s", rep.MaxSeverity())
	}
}

func TestIssueOrderWithinTable(t *testing.T) {
	rep := Compare(
		info("old", col("t", "a", "INT"), col("t", "b", "INT"), col("t", "c", "INT")),
		info("new", col("t", "d", "INT"), col("t", "c", "TEXT"), col("t", "a", "INT")),
	)
	want := []string{KindColumnRemoved, KindTypeChanged, KindColumnAdded}
	if len(rep.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %v", len(want), rep.Issues)
	}
	for i, kind := range want {
		if rep.Issues[i].Kind != kind {
			t.Errorf("issue %d: expected %s, got %s", i, kind, rep.Issues[i].Kind)
		}
	}
}

func TestReportString(t *testing.T) {
	rep := Compare(
		info("old.db", col("t1", "a", "INT")),
		info("new.db", col("t1", "a", "INT"), col("t1", "b", "TEXT")),
	)
	want := "Drift between old.db and new.db:\n[INFO] t1.b: added\n"
	if rep.String() != want {
		t.Fatalf("expected %q, got %q", want, rep.String())
	}
}
