package activity

import (
	"fmt"
	"testing"
)

func TestLog_EvictsOldestBeyondCapacity(t *testing.T) {
	l := New(100)
	for i := 0; i < 250; i++ {
		l.Append(fmt.Sprintf("line %d", i))
	}

	lines := l.Lines()
	if len(lines) != 100 {
		t.Fatalf("expected 100 lines, got %d", len(lines))
	}
	for i, line := range lines {
		want := fmt.Sprintf("line %d", 150+i)
		if line != want {
			t.Fatalf("lines[%d] = %q, want %q", i, line, want)
		}
	}
}

func TestLog_UnderCapacityKeepsEverything(t *testing.T) {
	l := New(5)
	l.Append("a")
	l.Append("b")

	lines := l.Lines()
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Fatalf("Lines() = %v", lines)
	}
	if l.Len() != 2 || l.Cap() != 5 {
		t.Fatalf("Len/Cap = %d/%d", l.Len(), l.Cap())
	}
}

func TestLog_WriteSplitsLines(t *testing.T) {
	l := New(10)
	n, err := l.Write([]byte("first\nsecond\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("first\nsecond\n") {
		t.Fatalf("Write returned %d", n)
	}
	if _, err := l.Write([]byte("\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := l.Lines()
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("Lines() = %v", lines)
	}
}

func TestLog_Tail(t *testing.T) {
	l := New(10)
	for i := 0; i < 6; i++ {
		l.Append(fmt.Sprint(i))
	}

	tests := []struct {
		n    int
		want []string
	}{
		{n: 2, want: []string{"4", "5"}},
		{n: 0, want: []string{"0", "1", "2", "3", "4", "5"}},
		{n: 50, want: []string{"0", "1", "2", "3", "4", "5"}},
	}
	for _, tt := range tests {
		got := l.Tail(tt.n)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Fatalf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestLog_ResizeKeepsNewest(t *testing.T) {
	l := New(5)
	for i := 0; i < 7; i++ {
		l.Append(fmt.Sprint(i))
	}
	l.Resize(3)
	if got := fmt.Sprint(l.Lines()); got != "[4 5 6]" {
		t.Fatalf("after shrink Lines() = %s", got)
	}

	l.Resize(10)
	l.Append("7")
	if got := fmt.Sprint(l.Lines()); got != "[4 5 6 7]" {
		t.Fatalf("after grow Lines() = %s", got)
	}
}
