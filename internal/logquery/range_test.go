package logquery

import (
	"strconv"
	"strings"
	"testing"
)

func tenLines() string {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, "line"+strconv.Itoa(i))
	}
	return strings.Join(lines, "\n")
}

func TestRange_Basic(t *testing.T) {
	got, err := Range(tenLines(), 2, 4, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Lines 2-4 of 10:\nline2\nline3\nline4"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRange_NegativeIndices(t *testing.T) {
	got, err := Range(tenLines(), -3, -1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Lines 8-10 of 10:\nline8\nline9\nline10"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRange_NegativeEquivalence(t *testing.T) {
	neg, err := Range(tenLines(), -3, -1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos, err := Range(tenLines(), 8, 10, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if neg != pos {
		t.Errorf("negative and positive forms diverge: %q vs %q", neg, pos)
	}
}

func TestRange_WithLineNumbers(t *testing.T) {
	got, err := Range(tenLines(), 1, 2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Lines 1-2 of 10:\n1: line1\n2: line2"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRange_OutOfBounds(t *testing.T) {
	if _, err := Range(tenLines(), 1, 20, false); err == nil || err.Code != "InvalidRange" {
		t.Fatalf("expected InvalidRange, got %v", err)
	}
}

func TestRange_StartAfterEnd(t *testing.T) {
	if _, err := Range(tenLines(), 5, 2, false); err == nil || err.Code != "InvalidRange" {
		t.Fatalf("expected InvalidRange, got %v", err)
	}
}

func TestRange_RoundTrip(t *testing.T) {
	text := tenLines()
	for a := 1; a <= 10; a++ {
		for b := a; b <= 10; b++ {
			got, err := Range(text, a, b, false)
			if err != nil {
				t.Fatalf("unexpected error for [%d,%d]: %v", a, b, err)
			}
			lines := strings.Split(text, "\n")
			want := "Lines " + strconv.Itoa(a) + "-" + strconv.Itoa(b) + " of 10:\n" + strings.Join(lines[a-1:b], "\n")
			if got != want {
				t.Errorf("[%d,%d]: got %q, want %q", a, b, got, want)
			}
		}
	}
}
