package script

import "strings"

// Lex converts raw script bytes into tokens. The only failure is a quoted
// string that reaches end of input before its closing quote.
func Lex(src []byte) ([]Token, error) {
	lx := lexer{src: src, line: 1}
	for lx.pos < len(lx.src) {
		if err := lx.next(); err != nil {
			return nil, err
		}
	}
	return lx.tokens, nil
}

type lexer struct {
	src    []byte
	pos    int
	line   int
	tokens []Token
}

func (lx *lexer) emit(kind TokenKind, text string) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Text: text, Line: lx.line})
}

func (lx *lexer) next() error {
	b := lx.src[lx.pos]
	switch b {
	case '"':
		return lx.quoted()
	case '@':
		lx.pos++
		lx.emit(TokenDirective, lx.word())
	case '$':
		lx.pos++
		lx.emit(TokenVariable, lx.word())
	case '-':
		lx.pos++
		lx.emit(TokenRemoveTag, lx.word())
	case '{':
		lx.pos++
		lx.emit(TokenSetOpen, "")
	case '}':
		lx.pos++
		lx.emit(TokenSetClose, "")
	case '=':
		lx.pos++
		lx.emit(TokenAssignment, "")
	case ';':
		lx.pos++
		lx.emit(TokenStatementEnd, "")
	case '#':
		for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
			lx.pos++
		}
	case '\n':
		lx.emit(TokenLineBreak, "")
		lx.pos++
		lx.line++
	case ':', ' ', '\t', '\r':
		lx.pos++
	default:
		lx.emit(TokenAddTag, lx.word())
	}
	return nil
}

// word scans up to whitespace, ';' or end of input.
func (lx *lexer) word() string {
	start := lx.pos
	for lx.pos < len(lx.src) && !isSeparator(lx.src[lx.pos]) {
		lx.pos++
	}
	return string(lx.src[start:lx.pos])
}

func (lx *lexer) quoted() error {
	startLine := lx.line
	lx.pos++ // opening quote
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		b := lx.src[lx.pos]
		switch {
		case b == '"':
			lx.pos++
			lx.tokens = append(lx.tokens, Token{Kind: TokenString, Text: sb.String(), Line: startLine})
			return nil
		case b == '\\' && lx.pos+1 < len(lx.src):
			lx.pos++
			b = lx.src[lx.pos]
		case b == '\n':
			lx.line++
		}
		sb.WriteByte(b)
		lx.pos++
	}
	return syntaxErrorf(ErrLex, startLine, "unterminated string starting %q", truncate(sb.String(), 24))
}

func isSeparator(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == ';'
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
