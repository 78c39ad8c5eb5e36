package drift

// Centralized severity and message helpers for schema changes.
// Rules:
// - BLOCK for changes that lose a table or column
// - WARN for risky but reversible changes
// - INFO for additive changes

const (
	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityBlock = "BLOCK"
)

// Change kinds.
const (
	KindTableAdded    = "table_added"
	KindTableRemoved  = "table_removed"
	KindColumnAdded   = "column_added"
	KindColumnRemoved = "column_removed"
	KindTypeChanged   = "type_changed"
)

var severityRank = map[string]int{
	SeverityInfo:  0,
	SeverityWarn:  1,
	SeverityBlock: 2,
}

func SeverityForChange(kind string) string {
	switch kind {
	case KindTableRemoved, KindColumnRemoved:
		return SeverityBlock
	case KindTypeChanged:
		return SeverityWarn
	case KindTableAdded, KindColumnAdded:
		return SeverityInfo
	default:
		return SeverityInfo
	}
}

// MessageForChange returns a concise message for the given change kind.
func MessageForChange(kind, from, to string) string {
	switch kind {
	case KindTableAdded:
		return "table added"
	case KindTableRemoved:
		return "table missing in new schema"
	case KindColumnAdded:
		return "added"
	case KindColumnRemoved:
		return "present in old schema but missing in new"
	case KindTypeChanged:
		return "type changed " + quoteType(from) + " -> " + quoteType(to)
	default:
		return ""
	}
}

func quoteType(t string) string {
	if t == "" {
		return "(untyped)"
	}
	return t
}
