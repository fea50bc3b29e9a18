package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDocument(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		title   string
		content string
	}{
		{"heading", "# Hello\n\nWorld", "Hello", "World"},
		{"plain first line", "Hello\nWorld\n", "Hello", "World\n"},
		{"title only", "# Hello", "Hello", ""},
		{"crlf", "# Hello\r\n\r\nWorld", "Hello", "World"},
		{"blank title", "\nJust content", "", "Just content"},
		{"empty", "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			title, content := parseDocument([]byte(tc.raw))
			if title != tc.title || content != tc.content {
				t.Errorf("Expected (%q, %q), got (%q, %q)", tc.title, tc.content, title, content)
			}
		})
	}
}

func TestFormatDocumentRoundTrip(t *testing.T) {
	title, content := parseDocument(formatDocument("My Post", "Line one\nLine two"))
	if title != "My Post" || content != "Line one\nLine two" {
		t.Errorf("Unexpected round trip (%q, %q)", title, content)
	}
}

func TestFileWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.md")
	w := &fileWatcher{path: path}

	if _, changed, err := w.poll(); changed || err != nil {
		t.Fatalf("Expected missing file to be quiet, got changed=%v err=%v", changed, err)
	}

	if err := os.WriteFile(path, []byte("# One"), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, changed, err := w.poll()
	if err != nil || !changed || string(raw) != "# One" {
		t.Fatalf("Expected first read, got %q changed=%v err=%v", raw, changed, err)
	}

	if _, changed, _ := w.poll(); changed {
		t.Error("Expected no change without a write")
	}

	if err := os.WriteFile(path, []byte("# One, edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	raw, changed, _ = w.poll()
	if !changed || string(raw) != "# One, edited" {
		t.Errorf("Expected the edit to be seen, got %q changed=%v", raw, changed)
	}
}
