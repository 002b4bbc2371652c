package script

// Parse builds a Document from tokens. The first error aborts the parse and
// no partial document is returned.
func Parse(tokens []Token) (*Document, error) {
	b := newBuilder(tokens)
	for !b.done() {
		var err error
		switch b.peek().Kind {
		case TokenVariable:
			err = b.variable()
		case TokenString:
			_, err = b.file()
		case TokenDirective:
			err = b.directive()
		case TokenSetOpen:
			err = b.group()
		default:
			// Stray tokens outside a group are tolerated.
			b.pos++
		}
		if err != nil {
			return nil, err
		}
	}
	return b.doc, nil
}

// builder carries the state of a single parse.
type builder struct {
	tokens    []Token
	pos       int
	variables map[string][]Token
	paths     map[string]struct{}
	doc       *Document
}

func newBuilder(tokens []Token) *builder {
	return &builder{
		tokens:    tokens,
		variables: make(map[string][]Token),
		paths:     make(map[string]struct{}),
		doc: &Document{
			Tags:       TagSet{},
			Directives: make(map[string]string),
		},
	}
}

func (b *builder) done() bool {
	return b.pos >= len(b.tokens)
}

func (b *builder) peek() Token {
	return b.tokens[b.pos]
}

func (b *builder) advance() Token {
	tok := b.tokens[b.pos]
	b.pos++
	return tok
}

// definesVariable reports whether the variable at the cursor starts a
// definition rather than a reference.
func (b *builder) definesVariable() bool {
	next := b.pos + 1
	return next < len(b.tokens) && b.tokens[next].Kind == TokenAssignment
}

// expand returns the op sequence stored under a referenced variable.
func (b *builder) expand(ref Token) ([]Token, error) {
	ops, ok := b.variables[ref.Text]
	if !ok {
		return nil, syntaxErrorf(ErrParse, ref.Line, "Undefined variable $%s", ref.Text)
	}
	return ops, nil
}

// variable handles `$name = op... (; | newline)`.
func (b *builder) variable() error {
	name := b.advance()
	if b.done() || b.peek().Kind != TokenAssignment {
		return syntaxErrorf(ErrParse, name.Line, "Expected '=' after variable $%s", name.Text)
	}
	b.pos++

	var ops []Token
loop:
	for !b.done() {
		tok := b.peek()
		switch {
		case tok.isTagOp():
			ops = append(ops, tok)
		case tok.Kind == TokenVariable:
			nested, err := b.expand(tok)
			if err != nil {
				return err
			}
			ops = append(ops, nested...)
		case tok.Kind == TokenStatementEnd || tok.Kind == TokenLineBreak:
			b.pos++
			break loop
		default:
			break loop
		}
		b.pos++
	}
	b.variables[name.Text] = ops
	return nil
}

// tagList resolves a run of tag edits, variable references and line breaks.
func (b *builder) tagList() (TagSet, error) {
	tags := TagSet{}
	for !b.done() {
		tok := b.peek()
		switch {
		case tok.isTagOp():
			tags.apply(tok)
		case tok.Kind == TokenVariable:
			if b.definesVariable() {
				b.doc.Tags.Union(tags)
				return tags, nil
			}
			ops, err := b.expand(tok)
			if err != nil {
				return nil, err
			}
			for _, op := range ops {
				tags.apply(op)
			}
		case tok.Kind == TokenLineBreak:
		default:
			b.doc.Tags.Union(tags)
			return tags, nil
		}
		b.pos++
	}
	b.doc.Tags.Union(tags)
	return tags, nil
}

// file handles `"path" taglist` and returns the index of the new FileDecl.
func (b *builder) file() (int, error) {
	tok := b.advance()
	if _, seen := b.paths[tok.Text]; seen {
		return 0, syntaxErrorf(ErrParse, tok.Line, "Repeated file %s", tok.Text)
	}
	b.paths[tok.Text] = struct{}{}

	tags, err := b.tagList()
	if err != nil {
		return 0, err
	}
	b.doc.Files = append(b.doc.Files, FileDecl{Path: tok.Text, Tags: tags, Line: tok.Line})
	return len(b.doc.Files) - 1, nil
}

// group handles `{ (@autotag)? file* } taglist`.
func (b *builder) group() error {
	open := b.advance()
	group := GroupDecl{Tags: TagSet{}, Line: open.Line}

	closed := false
	for !b.done() && !closed {
		tok := b.peek()
		switch tok.Kind {
		case TokenDirective:
			if tok.Text != "autotag" {
				return syntaxErrorf(ErrParse, tok.Line, "Unexpected directive @%s", tok.Text)
			}
			group.Autotag = true
			b.pos++
		case TokenString:
			idx, err := b.file()
			if err != nil {
				return err
			}
			group.Members = append(group.Members, idx)
			if group.Autotag {
				group.Tags.Union(b.doc.Files[idx].Tags)
			}
		case TokenLineBreak:
			b.pos++
		case TokenSetClose:
			b.pos++
			closed = true
		default:
			return syntaxErrorf(ErrParse, tok.Line, "Unexpected token %s in group", tok)
		}
	}
	if !closed {
		return syntaxErrorf(ErrParse, open.Line, "Unterminated group")
	}
	tags, err := b.tagList()
	if err != nil {
		return err
	}
	group.Tags.Union(tags)
	b.doc.Groups = append(b.doc.Groups, group)
	return nil
}

// directive handles `@name "value"`.
func (b *builder) directive() error {
	tok := b.advance()
	if b.done() || b.peek().Kind != TokenString {
		return syntaxErrorf(ErrParse, tok.Line, "Empty directive @%s", tok.Text)
	}
	b.doc.Directives[tok.Text] = b.advance().Text
	return nil
}
