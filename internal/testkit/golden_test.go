package testkit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"irkit/internal/testkit"
)

// TestDiff checks the line markers of a diff.
func TestDiff(t *testing.T) {
	if d := testkit.Diff("a\nb\n", "a\nb\n"); d != "" {
		t.Errorf("Diff(equal) = %q, want empty", d)
	}
	d := testkit.Diff("a\nb\nc\n", "a\nx\nc\n")
	for _, want := range []string{"\t-b\n", "\t+x\n"} {
		if !strings.Contains(d, want) {
			t.Errorf("diff missing %q:\n%s", want, d)
		}
	}
	if strings.Contains(d, "\ta\n") {
		t.Errorf("diff repeats unchanged lines:\n%s", d)
	}
}

// TestGoldenMatches checks that an identical file passes.
func TestGoldenMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.golden")
	if err := os.WriteFile(path, []byte("nop\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	testkit.Golden(t, path, "nop\n")
}

// TestGoldenUpdate checks that the update switch rewrites the file.
func TestGoldenUpdate(t *testing.T) {
	t.Setenv(testkit.UpdateEnv, "1")
	path := filepath.Join(t.TempDir(), "sub", "out.golden")
	testkit.Golden(t, path, "return\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "return\n" {
		t.Errorf("golden = %q", data)
	}
}
