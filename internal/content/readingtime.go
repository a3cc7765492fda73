package content

import "fmt"

const wordsPerMinute = 200

// ReadingTime estimates how long the compiled body takes to read and
// renders it as a short duration string. CJK characters count as one word
// each; everything else is counted as whitespace-separated words.
func ReadingTime(plain string) string {
	words := countWords(plain)
	if words < wordsPerMinute {
		return "< 1 分钟"
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d 分钟", minutes)
}

func countWords(s string) int {
	words := 0
	inWord := false
	for _, r := range s {
		switch {
		case isCJK(r):
			words++
			inWord = false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}
	return words
}

func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // extension A
		return true
	case r >= 0x3040 && r <= 0x30FF: // hiragana, katakana
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
		return true
	}
	return false
}
