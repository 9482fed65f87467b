package tregex

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokRegex
	tokBlank // __
	tokRelation
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokBang
	tokQuestion
	tokAt
	tokPipe
	tokAmp
	tokEquals
	tokTilde
	tokHash
	tokPercent
	tokColon
	tokSemicolon
)

var punctTokens = map[byte]tokenKind{
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBracket,
	']': tokRBracket,
	'{': tokLBrace,
	'}': tokRBrace,
	'!': tokBang,
	'?': tokQuestion,
	'@': tokAt,
	'|': tokPipe,
	'&': tokAmp,
	'~': tokTilde,
	'#': tokHash,
	'%': tokPercent,
	':': tokColon,
	';': tokSemicolon,
}

// token is one lexeme. For relations text is the symbol and arg an attached
// child index ("<2" lexes as "<" with arg "2").
type token struct {
	kind tokenKind
	text string
	arg  string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of pattern"
	case tokRegex:
		return "/" + t.text + "/"
	case tokString:
		return strconv.Quote(t.text)
	case tokRelation:
		return fmt.Sprintf("relation %q", t.text+t.arg)
	default:
		return strconv.Quote(t.text)
	}
}

// identStop lists the characters that end an unquoted label.
const identStop = `()[]{}/|@!#%&=?<>~.,$:;"`

// relationSymbols is ordered so that longer symbols are tried first.
var relationSymbols = []string{
	"<...",
	"<<,", "<<-", "<<:", "<<#", ">>,", ">>-", ">>:", ">>#",
	"$++", "$--", "$..", "$,,",
	"<<", ">>", "<+", ">+", ".+", ",+", "<=", "<:", ">:", "<#", ">#",
	"<,", "<-", ">,", ">-", "..", ",,", "$+", "$-", "$.", "$,", "==",
	"<", ">", ".", ",", "$",
}

// lexer produces tokens on demand so the parser can switch to raw scanning
// for relation arguments.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer { return &lexer{src: src} }

func (lx *lexer) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Pattern: lx.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
		lx.pos++
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpace()
	start := lx.pos
	if start >= len(lx.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	c := lx.src[start]
	switch {
	case c == '=':
		if strings.HasPrefix(lx.src[start:], "==") {
			lx.pos += 2
			return token{kind: tokRelation, text: "==", pos: start}, nil
		}
		lx.pos++
		return token{kind: tokEquals, text: "=", pos: start}, nil
	case strings.IndexByte("<>.,$", c) >= 0:
		return lx.relation()
	case c == '/':
		return lx.regex()
	case c == '"':
		return lx.quoted()
	}
	if kind, ok := punctTokens[c]; ok {
		lx.pos++
		return token{kind: kind, text: string(c), pos: start}, nil
	}
	for lx.pos < len(lx.src) && !isSpace(lx.src[lx.pos]) && strings.IndexByte(identStop, lx.src[lx.pos]) < 0 {
		lx.pos++
	}
	text := lx.src[start:lx.pos]
	if text == "__" {
		return token{kind: tokBlank, text: text, pos: start}, nil
	}
	return token{kind: tokIdent, text: text, pos: start}, nil
}

func (lx *lexer) relation() (token, error) {
	start := lx.pos
	rest := lx.src[start:]
	if rest[0] == '<' || rest[0] == '>' {
		i := 1
		if i < len(rest) && rest[i] == '-' {
			i++
		}
		j := i
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		if j > i {
			lx.pos += j
			return token{kind: tokRelation, text: rest[:1], arg: rest[1:j], pos: start}, nil
		}
	}
	for _, sym := range relationSymbols {
		if strings.HasPrefix(rest, sym) {
			lx.pos += len(sym)
			return token{kind: tokRelation, text: sym, pos: start}, nil
		}
	}
	return token{}, lx.errorf(start, "unknown relation at %q", rest)
}

func (lx *lexer) regex() (token, error) {
	start := lx.pos
	var b strings.Builder
	for i := start + 1; i < len(lx.src); i++ {
		c := lx.src[i]
		if c == '\\' && i+1 < len(lx.src) && lx.src[i+1] == '/' {
			b.WriteByte('/')
			i++
			continue
		}
		if c == '/' {
			lx.pos = i + 1
			return token{kind: tokRegex, text: b.String(), pos: start}, nil
		}
		b.WriteByte(c)
	}
	return token{}, lx.errorf(start, "unterminated regular expression")
}

func (lx *lexer) quoted() (token, error) {
	start := lx.pos
	for i := start + 1; i < len(lx.src); i++ {
		switch lx.src[i] {
		case '\\':
			i++
		case '"':
			s, err := strconv.Unquote(lx.src[start : i+1])
			if err != nil {
				return token{}, lx.errorf(start, "bad quoted label: %v", err)
			}
			lx.pos = i + 1
			return token{kind: tokString, text: s, pos: start}, nil
		}
	}
	return token{}, lx.errorf(start, "unterminated quoted label")
}

// raw returns the text up to the parenthesis closing one already consumed,
// skipping over quoted labels and regular expressions, and moves past it.
func (lx *lexer) raw() (string, error) {
	start := lx.pos
	depth := 0
	for i := start; i < len(lx.src); i++ {
		switch lx.src[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				lx.pos = i + 1
				return strings.TrimSpace(lx.src[start:i]), nil
			}
			depth--
		case '"', '/':
			end := closingDelim(lx.src, i)
			if end < 0 {
				return "", lx.errorf(i, "unterminated %c", lx.src[i])
			}
			i = end
		}
	}
	return "", lx.errorf(start, "missing ')'")
}

// closingDelim returns the index of the unescaped delimiter closing the one
// at open, or -1.
func closingDelim(s string, open int) int {
	delim := s[open]
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case delim:
			return i
		}
	}
	return -1
}

// peek returns the token after the current position without consuming it.
func (lx *lexer) peek() (token, error) {
	saved := lx.pos
	t, err := lx.next()
	lx.pos = saved
	return t, err
}
