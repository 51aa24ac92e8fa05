package build

import (
	"slices"
	"testing"
)

func TestEnviron(t *testing.T) {
	got := environ(map[string]string{
		"PYTHONUNBUFFERED": "1",
		"APP_ENV":          "production",
		"TZ":               "UTC",
	})
	want := []string{"APP_ENV=production", "PYTHONUNBUFFERED=1", "TZ=UTC"}
	if !slices.Equal(got, want) {
		t.Fatalf("environ = %v, want %v", got, want)
	}
}

func TestEnvironEmpty(t *testing.T) {
	if got := environ(nil); len(got) != 0 {
		t.Fatalf("environ(nil) = %v, want empty", got)
	}
}
