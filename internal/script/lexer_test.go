package script

import (
	"errors"
	"testing"
)

func TestLexTokenKinds(t *testing.T) {
	src := "$v = a -b;\n@title \"x y\" # trailing comment\n{ } c:d\n"
	tokens, err := Lex([]byte(src))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	want := []Token{
		{Kind: TokenVariable, Text: "v", Line: 1},
		{Kind: TokenAssignment, Line: 1},
		{Kind: TokenAddTag, Text: "a", Line: 1},
		{Kind: TokenRemoveTag, Text: "b", Line: 1},
		{Kind: TokenStatementEnd, Line: 1},
		{Kind: TokenLineBreak, Line: 1},
		{Kind: TokenDirective, Text: "title", Line: 2},
		{Kind: TokenString, Text: "x y", Line: 2},
		{Kind: TokenLineBreak, Line: 2},
		{Kind: TokenSetOpen, Line: 3},
		{Kind: TokenSetClose, Line: 3},
		{Kind: TokenAddTag, Text: "c:d", Line: 3},
		{Kind: TokenLineBreak, Line: 3},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(want))
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d = %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestLexColonSeparatesOutsideWords(t *testing.T) {
	tokens, err := Lex([]byte(`"a.txt": tag`))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 2 || tokens[0].Kind != TokenString || tokens[1].Text != "tag" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}

func TestLexStringEscapesAndLines(t *testing.T) {
	tokens, err := Lex([]byte("\"say \\\"hi\\\"\nthere\" next"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Text != "say \"hi\"\nthere" || tokens[0].Line != 1 {
		t.Fatalf("unexpected string token %+v", tokens[0])
	}
	if tokens[1].Line != 2 {
		t.Fatalf("line after multi-line string = %d, want 2", tokens[1].Line)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex([]byte("ok\n\"never closed"))
	if !errors.Is(err, ErrLex) {
		t.Fatalf("expected ErrLex, got %v", err)
	}
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.Line != 2 {
		t.Fatalf("expected syntax error on line 2, got %v", err)
	}
}

func TestLexEmptyInput(t *testing.T) {
	tokens, err := Lex(nil)
	if err != nil || len(tokens) != 0 {
		t.Fatalf("Lex(nil) = %v, %v", tokens, err)
	}
}
