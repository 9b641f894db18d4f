package version

import "testing"

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "dev", "", ""
	if got := String(); got != "chatview dev" {
		t.Fatalf("got %q", got)
	}
	Version, Commit, Date = "1.2.0", "abc123", "2024-05-01"
	if got := String(); got != "chatview 1.2.0+abc123 (2024-05-01)" {
		t.Fatalf("got %q", got)
	}
}
