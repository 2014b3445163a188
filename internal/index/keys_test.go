package index

import (
	"testing"

	"relkv/internal/domain"
)

func TestRowKey(t *testing.T) {
	if got := RowKey("person", "1"); got != "person:1" {
		t.Errorf("expected person:1, got %s", got)
	}
}

func TestKeysAreInjective(t *testing.T) {
	keys := map[string]string{}
	add := func(label, key string) {
		t.Helper()
		if other, ok := keys[key]; ok {
			t.Fatalf("key collision between %s and %s: %q", label, other, key)
		}
		keys[key] = label
	}

	add("row a:b/c", RowKey("a:b", "c"))
	add("row a/b:c", RowKey("a", "b:c"))
	add("row a\\/b", RowKey(`a\`, "b"))
	add("row a/\\b", RowKey("a", `\b`))
	add("primary a", PrimaryKey("a"))
	add("primary a::identifiers", PrimaryKey("a::identifiers"))
	add("row ::index-of/x", RowKey("::index-of", "x"))

	fk := func(ref, own, prop string, v domain.ID) string {
		return ForeignKey{Referenced: ref, Owning: own, Property: prop, Value: v}.Key()
	}
	add("fk person/address/personId/1", fk("person", "address", "personId", "1"))
	add("fk address/person/personId/1", fk("address", "person", "personId", "1"))
	add("fk person/address/owner/1", fk("person", "address", "owner", "1"))
	add("fk person/address/personId/2", fk("person", "address", "personId", "2"))
	add("fk with separator in value", fk("person", "address", "personId", "1::"))
	add("fk with separator in property", fk("person", "address", "personId::with-identifier::1", ""))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"a:b", `a\:b`},
		{`a\b`, `a\\b`},
		{`\:`, `\\\:`},
	}

	for _, tt := range tests {
		if got := escape(tt.input); got != tt.want {
			t.Errorf("escape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
