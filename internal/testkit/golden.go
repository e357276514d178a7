// Package testkit holds helpers shared by package tests.
package testkit

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// UpdateEnv names the environment variable that makes Golden rewrite files.
const UpdateEnv = "IRKIT_UPDATE_GOLDEN"

// Golden compares got with the contents of path and fails t with a line diff
// when they differ. With IRKIT_UPDATE_GOLDEN=1 the file is rewritten instead.
func Golden(t testing.TB, path, got string) {
	t.Helper()
	if os.Getenv(UpdateEnv) == "1" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(got), 0o600); err != nil {
			t.Fatalf("golden %s: %v", path, err)
		}
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v (set %s=1 to create it)", path, err, UpdateEnv)
	}
	if d := Diff(string(data), got); d != "" {
		t.Fatalf("output differs from %s:\n%s", path, d)
	}
}

// Diff returns a numbered line diff turning want into got, or "" when they
// are equal. Removed lines are prefixed with "-", added ones with "+".
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	lineNumber := 0
	for _, d := range diffs {
		text := strings.Split(d.Text, "\n")
		if text[len(text)-1] == "" {
			text = text[:len(text)-1]
		}
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			lineNumber += len(text)
			continue
		}
		for _, line := range text {
			if d.Type != diffmatchpatch.DiffDelete {
				lineNumber++
			}
			sb.WriteString(strconv.Itoa(lineNumber) + "\t" + prefix + line + "\n")
		}
	}
	return sb.String()
}
