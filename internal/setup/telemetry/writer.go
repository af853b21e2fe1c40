package telemetry

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// lineCapWriter appends to a log file and trims it back to the newest
// maxLines lines whenever it has grown to twice that size.
type lineCapWriter struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	maxLines int
	lines    int
}

// openLineCapWriter opens path for appending and counts its existing lines.
func openLineCapWriter(path string, maxLines int) (*lineCapWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	lines, err := countLines(path)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &lineCapWriter{file: file, path: path, maxLines: maxLines, lines: lines}, nil
}

// Write implements io.Writer.
func (w *lineCapWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}

	w.lines += bytes.Count(p, []byte{'\n'})
	if w.maxLines > 0 && w.lines >= w.maxLines*2 {
		if err := w.trim(); err != nil {
			return n, fmt.Errorf("failed to trim log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the file to disk.
func (w *lineCapWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Sync()
}

// trim rewrites the file with only its newest maxLines lines.
func (w *lineCapWriter) trim() error {
	content, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}

	kept := content
	for i, seen := len(content)-2, 0; i >= 0; i-- {
		if content[i] == '\n' {
			seen++
			if seen == w.maxLines {
				kept = content[i+1:]
				break
			}
		}
	}

	temp, err := os.CreateTemp(filepath.Dir(w.path), "trim-log-")
	if err != nil {
		return err
	}

	if _, err := temp.Write(kept); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return err
	}
	temp.Close()

	w.file.Close()
	if err := os.Rename(temp.Name(), w.path); err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}

	w.file = file
	w.lines = bytes.Count(kept, []byte{'\n'})
	return nil
}

// countLines returns the number of newline-terminated lines in a file.
func countLines(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
