package namer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// directionalTokens are stripped during normalization, per spec.md
// section 4.12.
var directionalTokens = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"central": true, "upper": true, "lower": true, "mid": true,
	"midtown": true, "downtown": true,
}

var stFtMap = map[string]string{"st": "saint", "ft": "fort"}

// Normalize lowercases, strips parenthesized content, maps st->saint
// and ft->fort, removes directional tokens, and splits on
// non-alphanumerics, per spec.md section 4.12.
func Normalize(name string) []string {
	folded := norm.NFKC.String(name)
	lower := strings.ToLower(folded)
	lower = stripParens(lower)

	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := cur.String()
		cur.Reset()

		if mapped, ok := stFtMap[tok]; ok {
			tok = mapped
		}
		if directionalTokens[tok] {
			return
		}
		tokens = append(tokens, tok)
	}

	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

func stripParens(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// JaccardOverlap computes |shared|/|part| for the token sets of part
// against whole, per spec.md section 4.12's compound-name test.
func JaccardOverlap(part, whole []string) float64 {
	if len(part) == 0 {
		return 0
	}
	wholeSet := map[string]bool{}
	for _, t := range whole {
		wholeSet[t] = true
	}
	shared := 0
	for _, t := range part {
		if wholeSet[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(part))
}

// SplitCompound splits on the compound-name separators of spec.md
// section 4.12: "/", "&", "-", " and ".
func SplitCompound(name string) []string {
	replaced := strings.ReplaceAll(name, " and ", "/")
	replaced = strings.ReplaceAll(replaced, "&", "/")
	replaced = strings.ReplaceAll(replaced, "-", "/")

	var parts []string
	for _, p := range strings.Split(replaced, "/") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
