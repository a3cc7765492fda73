package content

import (
	"strings"
	"testing"
)

func TestReadingTimeEmpty(t *testing.T) {
	if got := ReadingTime(""); got != "< 1 分钟" {
		t.Errorf("ReadingTime(\"\") = %q, want %q", got, "< 1 分钟")
	}
}

func TestReadingTimeShortText(t *testing.T) {
	if got := ReadingTime("a few short words"); got != "< 1 分钟" {
		t.Errorf("ReadingTime = %q, want %q", got, "< 1 分钟")
	}
}

func TestReadingTimeLatinWords(t *testing.T) {
	if got := ReadingTime(strings.Repeat("word ", 200)); got != "1 分钟" {
		t.Errorf("200 words = %q, want %q", got, "1 分钟")
	}
	if got := ReadingTime(strings.Repeat("word ", 500)); got != "3 分钟" {
		t.Errorf("500 words = %q, want %q", got, "3 分钟")
	}
}

func TestReadingTimeCJK(t *testing.T) {
	// every CJK character counts as one word
	if got := ReadingTime(strings.Repeat("字", 400)); got != "2 分钟" {
		t.Errorf("400 CJK chars = %q, want %q", got, "2 分钟")
	}
}

func TestReadingTimeMonotonic(t *testing.T) {
	prev := 0
	for _, n := range []int{0, 10, 199, 200, 399, 400, 1000, 5000} {
		words := countWords(strings.Repeat("word ", n))
		if words < prev {
			t.Fatalf("countWords not monotonic: %d after %d", words, prev)
		}
		prev = words
	}
}
