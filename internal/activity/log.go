// Package activity keeps the most recent log lines in memory so a status
// surface can show what the daemon did lately.
package activity

import (
	"strings"
	"sync"
)

// DefaultCapacity is the number of lines kept when none is configured.
const DefaultCapacity = 100

// Log is a bounded FIFO of log lines. Once full, appending a line evicts the
// oldest one. It implements io.Writer so it can sit behind a logger.
type Log struct {
	mu    sync.Mutex
	lines []string
	start int
	size  int
}

// New creates a log holding at most capacity lines.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{lines: make([]string, capacity)}
}

// Write appends p as one or more lines. A trailing newline does not produce
// an empty line.
func (l *Log) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\r\n")
	if text == "" {
		return len(p), nil
	}
	for _, line := range strings.Split(text, "\n") {
		l.Append(strings.TrimRight(line, "\r"))
	}
	return len(p), nil
}

// Append adds a single line.
func (l *Log) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := len(l.lines)
	if l.size < capacity {
		l.lines[(l.start+l.size)%capacity] = line
		l.size++
		return
	}
	l.lines[l.start] = line
	l.start = (l.start + 1) % capacity
}

// Lines returns the retained lines, oldest first.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.lines[(l.start+i)%len(l.lines)]
	}
	return out
}

// Tail returns at most n of the newest lines, oldest first. n <= 0 returns all.
func (l *Log) Tail(n int) []string {
	lines := l.Lines()
	if n <= 0 || n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}

// Len returns the number of retained lines.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Cap returns the maximum number of retained lines.
func (l *Log) Cap() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// Resize changes the capacity, keeping the newest lines that still fit.
func (l *Log) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	keep := l.size
	if keep > capacity {
		keep = capacity
	}
	lines := make([]string, capacity)
	for i := 0; i < keep; i++ {
		lines[i] = l.lines[(l.start+l.size-keep+i)%len(l.lines)]
	}
	l.lines = lines
	l.start = 0
	l.size = keep
}
