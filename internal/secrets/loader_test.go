package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	urlFile := filepath.Join(dir, "postgres-url")
	if err := os.WriteFile(urlFile, []byte("postgres://db/neetwise\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("NEETWISE_TEST_REDIS_URL", " redis://cache:6379/0 ")
	t.Setenv("NEETWISE_TEST_EMPTY", "")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file", src: Source{Name: "postgres url", File: urlFile, Value: "ignored"}, want: "postgres://db/neetwise"},
		{name: "inline value", src: Source{Value: " postgres://inline ", Env: "NEETWISE_TEST_REDIS_URL"}, want: "postgres://inline"},
		{name: "environment", src: Source{Env: "NEETWISE_TEST_REDIS_URL"}, want: "redis://cache:6379/0"},
		{name: "missing file", src: Source{Name: "postgres url", File: filepath.Join(dir, "nope")}, wantErr: "reading postgres url"},
		{name: "empty file", src: Source{File: emptyFile}, wantErr: "is empty"},
		{name: "empty environment", src: Source{Name: "redis url", Env: "NEETWISE_TEST_EMPTY"}, wantErr: "redis url is not configured (NEETWISE_TEST_EMPTY is empty)"},
		{name: "nothing", src: Source{}, wantErr: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
