package markup

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// headingIDs generates deterministic heading anchor IDs: heading text
// lowercased, whitespace collapsed to hyphens, everything that is not a
// letter (CJK included), digit or hyphen stripped. Duplicates within one
// document get -1, -2, ... suffixes.
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() parser.IDs {
	return &headingIDs{used: make(map[string]bool)}
}

func (ids *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	id := slugify(string(value))
	if id == "" {
		id = "heading"
	}
	if ids.used[id] {
		for i := 1; ; i++ {
			candidate := id + "-" + strconv.Itoa(i)
			if !ids.used[candidate] {
				id = candidate
				break
			}
		}
	}
	ids.used[id] = true
	return []byte(id)
}

func (ids *headingIDs) Put(value []byte) {
	ids.used[string(value)] = true
}

func slugify(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			hyphen = false
		case unicode.IsSpace(r) || r == '-':
			if b.Len() > 0 && !hyphen {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
