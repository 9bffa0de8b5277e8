package parmparse

import (
	"strings"

	"github.com/nicholasbl/amrex/internal/errors"
)

// token is one lexical element of an input source.
type token struct {
	text   string
	line   int
	quoted bool
}

// isAssign reports whether tok is the definition operator.
func (tok token) isAssign() bool {
	return !tok.quoted && tok.text == "="
}

// lex splits src into tokens. Line numbers are 1-based.
func lex(src, file string) ([]token, error) {
	var tokens []token
	line := 1
	i := 0

	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '=':
			tokens = append(tokens, token{text: "=", line: line})
			i++
		case c == '"':
			text, n, newlines, ok := lexQuoted(src[i:])
			if !ok {
				return nil, errors.NewConfigError("unterminated string", errors.ErrSyntax).
					WithFile(file).WithLine(line)
			}
			tokens = append(tokens, token{text: text, line: line, quoted: true})
			line += newlines
			i += n
		default:
			start := i
			for i < len(src) && !isDelimiter(src[i]) {
				i++
			}
			tokens = append(tokens, token{text: src[start:i], line: line})
		}
	}
	return tokens, nil
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v', '=', '"':
		return true
	}
	return false
}

// lexQuoted reads a double-quoted string at the start of s. It returns
// the unescaped text, the bytes consumed and the newlines crossed.
func lexQuoted(s string) (text string, n, newlines int, ok bool) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			return b.String(), i + 1, newlines, true
		case '\\':
			if i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
				i++
				b.WriteByte(s[i])
				continue
			}
			b.WriteByte(c)
		case '\n':
			newlines++
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, 0, false
}
