package pgtestutil

import (
	"strings"
	"testing"
)

func TestReplaceDBInDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dsn   string
		newDB string
		want  string
	}{
		{
			name:  "url_form",
			dsn:   "postgres://u:p@localhost:5432/postgres?sslmode=disable",
			newDB: "testdb_1",
			want:  "postgres://u:p@localhost:5432/testdb_1?sslmode=disable",
		},
		{
			name:  "no_query",
			dsn:   "postgres://u:p@db:5432/old",
			newDB: "new",
			want:  "postgres://u:p@db:5432/new",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReplaceDBInDSN(tt.dsn, tt.newDB)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSanitizeForPgIdent(t *testing.T) {
	t.Parallel()

	got := sanitizeForPgIdent("TestSome/Sub Test:Name")
	if got != "testsome_sub_test_name" {
		t.Fatalf("unexpected ident: %q", got)
	}

	long := strings.Repeat("ab", 64)
	if l := len(sanitizeForPgIdent(long)); l > 63 {
		t.Fatalf("sanitized ident too long: %d", l)
	}
}
