package events

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
)

// Scanner limits for a single log line. Orchestrator payloads can embed
// sizable context excerpts, so the ceiling is generous.
const (
	initialLineBuf = 64 * 1024
	maxLineBuf     = 4 * 1024 * 1024
)

// ReadFile loads the ordered event sequence from one session log file.
// Blank lines, corrupt JSON, and non-object lines are skipped; the read
// never fails because of a bad line. A missing file yields an empty
// sequence and no error.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var evts []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, initialLineBuf), maxLineBuf)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if ev, ok := parseLine(line); ok {
			evts = append(evts, ev)
		}
	}
	// A scan error (oversized line, IO failure mid-read) truncates the
	// session rather than failing the whole read.
	return evts, nil
}

// ListSessionFiles returns the session log files under dir in lexical
// order. A missing directory yields an empty list and no error.
func ListSessionFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
