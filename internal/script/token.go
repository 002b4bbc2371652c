package script

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	// TokenSetOpen is the `{` that opens a group block.
	TokenSetOpen TokenKind = iota
	// TokenSetClose is the `}` that closes a group block.
	TokenSetClose
	// TokenString is a quoted literal, usually a file path.
	TokenString
	// TokenVariable is a `$name` reference or definition target.
	TokenVariable
	// TokenDirective is an `@name` directive.
	TokenDirective
	// TokenAddTag is a bareword tag to insert.
	TokenAddTag
	// TokenRemoveTag is a `-name` tag to remove.
	TokenRemoveTag
	// TokenAssignment is the `=` of a variable definition.
	TokenAssignment
	// TokenLineBreak is a newline; statements may end on one.
	TokenLineBreak
	// TokenStatementEnd is `;`.
	TokenStatementEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenSetOpen:
		return "'{'"
	case TokenSetClose:
		return "'}'"
	case TokenString:
		return "string"
	case TokenVariable:
		return "variable"
	case TokenDirective:
		return "directive"
	case TokenAddTag:
		return "tag"
	case TokenRemoveTag:
		return "tag removal"
	case TokenAssignment:
		return "'='"
	case TokenLineBreak:
		return "line break"
	case TokenStatementEnd:
		return "';'"
	default:
		return "unknown"
	}
}

// Token is a single lexical unit. Text holds the payload for strings,
// variables, directives and tags with the sigil already removed.
type Token struct {
	Kind TokenKind
	Text string
	Line int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenString:
		return fmt.Sprintf("%q", t.Text)
	case TokenVariable:
		return "$" + t.Text
	case TokenDirective:
		return "@" + t.Text
	case TokenAddTag:
		return t.Text
	case TokenRemoveTag:
		return "-" + t.Text
	default:
		return t.Kind.String()
	}
}

// isTagOp reports whether the token edits a tag set directly.
func (t Token) isTagOp() bool {
	return t.Kind == TokenAddTag || t.Kind == TokenRemoveTag
}
