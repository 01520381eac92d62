package typesystem

import (
	"fmt"
	"strings"
)

// Parse reads type syntax such as
//
//	int[]
//	java/util/Map<K, ? extends V>
//	Outer<T>.Inner<U>[]
//	java/util/ArrayList<>
//
// Dots inside a name are package separators; a dot after a type argument list
// continues a nested chain. Names that refer to type parameters come back as
// Class and are replaced with Param during resolution.
func Parse(src string) (Type, error) {
	p := &typeParser{src: src}
	t, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return t, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(src string) Type {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseIn parses src and turns names matching one of params into Param
// references.
func ParseIn(src string, params ...string) (Type, error) {
	t, err := Parse(src)
	if err != nil {
		return nil, err
	}
	for _, name := range params {
		t = ReplaceClass(t, name, Param{Name: name})
	}
	return t, nil
}

// MustParseIn is ParseIn for literals known to be valid.
func MustParseIn(src string, params ...string) Type {
	t, err := ParseIn(src, params...)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) accept(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func isNameByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

func (p *typeParser) readIdent() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// readName reads a possibly qualified name, normalizing dots to slashes.
func (p *typeParser) readName() (string, error) {
	first := p.readIdent()
	if first == "" {
		if p.pos >= len(p.src) {
			return "", p.errorf("unexpected end of input")
		}
		return "", p.errorf("unexpected %q", p.src[p.pos])
	}
	var sb strings.Builder
	sb.WriteString(first)
	for p.pos < len(p.src) && (p.src[p.pos] == '/' || p.src[p.pos] == '.') {
		p.pos++
		seg := p.readIdent()
		if seg == "" {
			return "", p.errorf("empty name segment")
		}
		sb.WriteByte('/')
		sb.WriteString(seg)
	}
	return sb.String(), nil
}

func (p *typeParser) parseType(inArgs bool) (Type, error) {
	if p.peek() == '?' {
		if !inArgs {
			return nil, p.errorf("wildcard outside type arguments")
		}
		return p.parseWildcard()
	}

	name, err := p.readName()
	if err != nil {
		return nil, err
	}

	if tag, ok := PrimByName(name); ok && p.peek() != '<' {
		dim, err := p.parseDims()
		if err != nil {
			return nil, err
		}
		if tag == Void && dim > 0 {
			return nil, p.errorf("array of void")
		}
		return Prim{Tag: tag, Dim: dim}, nil
	}

	if p.peek() != '<' {
		dim, err := p.parseDims()
		if err != nil {
			return nil, err
		}
		return Class{Name: name, Dim: dim}, nil
	}

	head := Generic{Name: name}
	if head.Args, err = p.parseArgs(); err != nil {
		return nil, err
	}
	tail := &head
	for p.accept('.') {
		inner := p.readIdent()
		if inner == "" {
			return nil, p.errorf("expected nested class name")
		}
		sub := &Generic{Name: inner}
		if p.peek() == '<' {
			if sub.Args, err = p.parseArgs(); err != nil {
				return nil, err
			}
		}
		tail.Sub = sub
		tail = sub
	}
	if head.Dim, err = p.parseDims(); err != nil {
		return nil, err
	}
	return head, nil
}

func (p *typeParser) parseArgs() ([]Type, error) {
	if !p.accept('<') {
		return nil, p.errorf("expected '<'")
	}
	if p.accept('>') {
		return Diamond(), nil
	}
	var args []Type
	for {
		t, err := p.parseType(true)
		if err != nil {
			return nil, err
		}
		if IsPrimitive(t) && t.(Prim).Tag == Void {
			return nil, p.errorf("void type argument")
		}
		args = append(args, t)
		if p.accept(',') {
			continue
		}
		if p.accept('>') {
			return args, nil
		}
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated type arguments")
		}
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
}

func (p *typeParser) parseWildcard() (Type, error) {
	p.pos++ // '?'
	save := p.pos
	switch p.readIdent() {
	case "extends":
		b, err := p.parseType(false)
		if err != nil {
			return nil, err
		}
		return Wildcard{Kind: Extends, Bound: b}, nil
	case "super":
		b, err := p.parseType(false)
		if err != nil {
			return nil, err
		}
		return Wildcard{Kind: Super, Bound: b}, nil
	case "":
		return Wildcard{Kind: Unbounded}, nil
	default:
		p.pos = save
		return nil, p.errorf("expected extends or super after '?'")
	}
}

func (p *typeParser) parseDims() (int, error) {
	n := 0
	for p.accept('[') {
		if !p.accept(']') {
			return 0, p.errorf("expected ']'")
		}
		n++
	}
	return n, nil
}
