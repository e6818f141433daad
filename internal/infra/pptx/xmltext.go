package pptx

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// span marks one XML element inside a part: [start,end) covers the
// whole element, [innerStart,innerEnd) its character content. For a
// self-closing element innerStart == innerEnd == end.
type span struct {
	start, end           int
	innerStart, innerEnd int
}

func (s span) selfClosing() bool { return s.innerEnd == s.end }

// elementSpans scans doc for non-nested <name ...>...</name> elements.
// The drawing-ml elements handled here (p:txBody, p:sp, a:p, a:t)
// never nest within themselves, which keeps this a flat scan.
func elementSpans(doc, name string) []span {
	var out []span
	openPrefix := "<" + name
	closeTag := "</" + name + ">"
	i := 0
	for {
		j := strings.Index(doc[i:], openPrefix)
		if j < 0 {
			return out
		}
		start := i + j
		k := start + len(openPrefix)
		if k >= len(doc) {
			return out
		}
		// The prefix must be the whole tag name, not e.g. "a:t" in "a:tab".
		switch doc[k] {
		case '>', ' ', '\t', '\r', '\n', '/':
		default:
			i = start + 1
			continue
		}
		gt := strings.IndexByte(doc[start:], '>')
		if gt < 0 {
			return out
		}
		openEnd := start + gt + 1
		if openEnd-2 >= start && doc[openEnd-2] == '/' {
			out = append(out, span{start, openEnd, openEnd, openEnd})
			i = openEnd
			continue
		}
		c := strings.Index(doc[openEnd:], closeTag)
		if c < 0 {
			i = openEnd
			continue
		}
		innerEnd := openEnd + c
		out = append(out, span{start, innerEnd + len(closeTag), openEnd, innerEnd})
		i = innerEnd + len(closeTag)
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeText(s string) string { return xmlEscaper.Replace(s) }

// unescapeText decodes the five named entities plus numeric character
// references (&#8217;, &#x2019;) as they appear in OOXML text nodes.
// Anything unrecognized passes through untouched.
func unescapeText(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteString(s[i:])
			break
		}
		if decoded, ok := decodeEntity(s[i+1 : i+semi]); ok {
			b.WriteString(decoded)
			i += semi + 1
			continue
		}
		b.WriteByte('&')
		i++
	}
	return b.String()
}

func decodeEntity(ref string) (string, bool) {
	switch ref {
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "amp":
		return "&", true
	case "quot":
		return `"`, true
	case "apos":
		return "'", true
	}
	if !strings.HasPrefix(ref, "#") {
		return "", false
	}
	digits := ref[1:]
	base := 10
	if strings.HasPrefix(digits, "x") || strings.HasPrefix(digits, "X") {
		digits = digits[1:]
		base = 16
	}
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil || n <= 0 || !utf8.ValidRune(rune(n)) {
		return "", false
	}
	return string(rune(n)), true
}
