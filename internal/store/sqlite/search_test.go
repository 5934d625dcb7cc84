package sqlite

import (
	"strings"
	"testing"
)

func TestConvertWebsearchToFTS5(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple term", "blacksmith", "blacksmith"},
		{"multiple terms", "John Smith", "John AND Smith"},
		{"explicit AND", "priest AND temple", "priest AND temple"},
		{"explicit OR", "guard OR captain", "guard OR captain"},
		{"lowercase operator", "guard or captain", "guard OR captain"},
		{"negation", "smith -black", "smith AND NOT black"},
		{"phrase", `"John Smith"`, `"John Smith"`},
		{"phrase with other term", `"John Smith" anvil`, `"John Smith" AND anvil`},
		{"prefix search", "smi*", "smi*"},
		{"complex query", `"John Smith" -gold anvil OR hammer`, `"John Smith" AND NOT gold AND anvil OR hammer`},
		{"NOT operator", "smith NOT black", "smith NOT black"},
		{"extra whitespace", "  tall \t  scarred ", "tall AND scarred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertWebsearchToFTS5(tt.input)
			if result != tt.expected {
				t.Errorf("convertWebsearchToFTS5(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements(ddl)
	triggers := 0
	for _, stmt := range statements {
		if strings.Contains(stmt, "CREATE TRIGGER") {
			triggers++
			if !strings.HasSuffix(strings.TrimSpace(stmt), "END;") {
				t.Fatalf("trigger split before END: %q", stmt)
			}
		}
	}
	if triggers != 3 {
		t.Fatalf("expected 3 trigger statements, got %d", triggers)
	}
}
