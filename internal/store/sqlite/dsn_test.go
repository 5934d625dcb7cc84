package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{name: "memory", dsn: "sqlite://:memory:", want: ":memory:"},
		{name: "absolute", dsn: "sqlite:///var/lib/settlecraft.db", want: "/var/lib/settlecraft.db"},
		{name: "explicit relative", dsn: "sqlite://./data/towns.db", want: "./data/towns.db"},
		{name: "bare relative", dsn: "sqlite://towns.db", want: "./towns.db"},
		{name: "escaped with query", dsn: "sqlite://my%20towns.db?cache=shared", want: "./my towns.db?cache=shared"},
		{name: "relative with query", dsn: "sqlite://towns.db?mode=ro", want: "./towns.db?mode=ro"},
		{name: "no path", dsn: "sqlite://?cache=shared", wantErr: true},
		{name: "wrong scheme", dsn: "postgres://localhost/towns", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDSN: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}
