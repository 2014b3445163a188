package index

import (
	"strings"

	"relkv/internal/domain"
)

// ForeignKey addresses one foreign-key index entry: the identifiers of Owning
// rows whose Property holds Value, a Referenced row identifier.
type ForeignKey struct {
	Referenced string
	Owning     string
	Property   string
	Value      domain.ID
}

var tokenEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`)

func escape(token string) string {
	return tokenEscaper.Replace(token)
}

// RowKey returns the storage key of a row
func RowKey(table string, id domain.ID) string {
	return escape(table) + ":" + escape(string(id))
}

// PrimaryKey returns the storage key of a table's primary index
func PrimaryKey(table string) string {
	return "::index-of::" + escape(table) + "::identifiers::"
}

// Key returns the storage key of the foreign-key index entry
func (fk ForeignKey) Key() string {
	var sb strings.Builder
	sb.WriteString("::index-of::")
	sb.WriteString(escape(fk.Owning))
	sb.WriteString("::which-has-one::")
	sb.WriteString(escape(fk.Referenced))
	sb.WriteString("::as::")
	sb.WriteString(escape(fk.Property))
	sb.WriteString("::with-identifier::")
	sb.WriteString(escape(string(fk.Value)))
	sb.WriteString("::")
	return sb.String()
}
