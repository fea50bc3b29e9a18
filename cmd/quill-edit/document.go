package main

import (
	"bytes"
	"os"
	"strings"
	"time"
)

// parseDocument splits a markdown file into the draft title (its first line,
// minus a leading "# ") and the content that follows.
func parseDocument(raw []byte) (title, content string) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	first, rest, _ := strings.Cut(text, "\n")
	title = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(first), "# "))
	return title, strings.TrimLeft(rest, "\n")
}

func formatDocument(title, content string) []byte {
	var buf bytes.Buffer
	buf.WriteString("# ")
	buf.WriteString(title)
	buf.WriteString("\n\n")
	buf.WriteString(content)
	return buf.Bytes()
}

// fileWatcher reports changes to one file by polling its size and mtime.
type fileWatcher struct {
	path    string
	modTime time.Time
	size    int64
	seen    bool
}

// poll returns the file's contents when it changed since the last call.
// A missing file is not an error; it simply has not been written yet.
func (w *fileWatcher) poll() ([]byte, bool, error) {
	info, err := os.Stat(w.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if w.seen && info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return nil, false, nil
	}

	raw, err := os.ReadFile(w.path)
	if err != nil {
		return nil, false, err
	}
	w.seen = true
	w.modTime = info.ModTime()
	w.size = info.Size()
	return raw, true, nil
}
