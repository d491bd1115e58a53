package selector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

// ErrSyntax is returned (wrapped) for selectors which cannot be parsed.
var ErrSyntax = errors.New("selector syntax error")

// Parse parses a single complex selector.
func Parse(text string) (*Selector, error) {
	text = strings.TrimSpace(text)
	p := &parser{s: text}
	comps, err := p.parseComplex()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.s[p.i:])
	}
	tracer().Debugf("parsed selector %q into %d components", text, len(comps))
	return &Selector{components: comps, text: text}, nil
}

// MustParse is like Parse, but panics on error.
func MustParse(text string) *Selector {
	sel, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return sel
}

// ParseList parses a comma separated list of complex selectors.
// Commas inside parentheses or quoted strings do not separate selectors.
func ParseList(text string) ([]*Selector, error) {
	parts, err := splitList(text)
	if err != nil {
		return nil, err
	}
	list := make([]*Selector, 0, len(parts))
	for _, part := range parts {
		sel, err := Parse(part)
		if err != nil {
			return nil, err
		}
		list = append(list, sel)
	}
	return list, nil
}

// parseRelativeList parses the argument of :has(). Every relative selector
// gets an anchor compound prepended, followed by its leading combinator
// (descendant if none is given).
func parseRelativeList(text string) ([]*Selector, error) {
	parts, err := splitList(text)
	if err != nil {
		return nil, err
	}
	list := make([]*Selector, 0, len(parts))
	for _, part := range parts {
		comb := Descendant
		rest := part
		switch part[0] {
		case '>':
			comb, rest = Child, part[1:]
		case '+':
			comb, rest = NextSibling, part[1:]
		case '~':
			comb, rest = LaterSibling, part[1:]
		}
		rel, err := Parse(rest)
		if err != nil {
			return nil, err
		}
		comps := make([]Component, 0, rel.Len()+2)
		comps = append(comps,
			Component{Kind: KindRelativeAnchor},
			Component{Kind: KindCombinator, Combinator: comb})
		comps = append(comps, rel.components...)
		list = append(list, &Selector{components: comps, text: part})
	}
	return list, nil
}

func splitList(text string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
		case ch == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	if depth != 0 || quote != 0 {
		return nil, fmt.Errorf("unbalanced selector list %q: %w", text, ErrSyntax)
	}
	parts = append(parts, strings.TrimSpace(text[start:]))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty selector in list %q: %w", text, ErrSyntax)
		}
	}
	return parts, nil
}

// --- Parser ----------------------------------------------------------------

type parser struct {
	s string
	i int
}

func (p *parser) eof() bool {
	return p.i >= len(p.s)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.i]
}

func (p *parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("selector %q at %d: %s: %w", p.s, p.i, msg, ErrSyntax)
}

func (p *parser) skipSpace() bool {
	start := p.i
	for !p.eof() && isSpace(p.s[p.i]) {
		p.i++
	}
	return p.i > start
}

func (p *parser) parseComplex() ([]Component, error) {
	var comps []Component
	p.skipSpace()
	for {
		compound, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		if len(compound) == 0 {
			return nil, p.errorf("expected compound selector")
		}
		comps = append(comps, compound...)
		hadSpace := p.skipSpace()
		if p.eof() {
			return comps, nil
		}
		comb := Descendant
		switch p.peek() {
		case '>':
			comb = Child
		case '+':
			comb = NextSibling
		case '~':
			comb = LaterSibling
		default:
			if !hadSpace {
				return nil, p.errorf("unexpected character %q", p.peek())
			}
		}
		if comb != Descendant {
			p.i++
			p.skipSpace()
		}
		comps = append(comps, Component{Kind: KindCombinator, Combinator: comb, text: comb.String()})
	}
}

// parseCompound parses a compound selector, including trailing pseudo-elements
// together with their implicit combinators.
func (p *parser) parseCompound() ([]Component, error) {
	var comps []Component
	n := 0 // components of the current compound
	push := func(c Component) {
		comps = append(comps, c)
		n++
	}
	implicit := func(comb Combinator) {
		if n == 0 {
			push(Component{Kind: KindUniversal})
		}
		comps = append(comps, Component{Kind: KindCombinator, Combinator: comb})
		n = 0
	}
	start := p.i
	if p.peek() == '*' {
		p.i++
		push(Component{Kind: KindUniversal, text: "*"})
	} else if isIdentStart(p.peek()) {
		name := p.ident()
		push(Component{Kind: KindType, Name: strings.ToLower(name), text: p.s[start:p.i]})
	}
	for !p.eof() {
		start = p.i
		switch p.peek() {
		case '#':
			p.i++
			name := p.ident()
			if name == "" {
				return nil, p.errorf("expected id")
			}
			push(Component{Kind: KindID, Name: name, text: p.s[start:p.i]})
		case '.':
			p.i++
			name := p.ident()
			if name == "" {
				return nil, p.errorf("expected class name")
			}
			push(Component{Kind: KindClass, Name: name, text: p.s[start:p.i]})
		case '[':
			c, err := p.attribute()
			if err != nil {
				return nil, err
			}
			c.text = p.s[start:p.i]
			push(c)
		case ':':
			p.i++
			if p.peek() == ':' {
				p.i++
				c, comb, err := p.pseudoElement()
				if err != nil {
					return nil, err
				}
				c.text = p.s[start:p.i]
				implicit(comb)
				push(c)
				continue
			}
			c, err := p.pseudoClass()
			if err != nil {
				return nil, err
			}
			c.text = p.s[start:p.i]
			push(c)
		default:
			return comps, nil
		}
	}
	return comps, nil
}

func (p *parser) attribute() (Component, error) {
	p.i++ // '['
	p.skipSpace()
	name := p.ident()
	if name == "" {
		return Component{}, p.errorf("expected attribute name")
	}
	c := Component{Kind: KindAttribute, Name: strings.ToLower(name), Op: AttrExists}
	p.skipSpace()
	if p.peek() == ']' {
		p.i++
		return c, nil
	}
	ops := []struct {
		tok string
		op  AttrOperator
	}{
		{"~=", AttrIncludes}, {"|=", AttrDashMatch}, {"^=", AttrPrefix},
		{"$=", AttrSuffix}, {"*=", AttrSubstring}, {"=", AttrEquals},
	}
	found := false
	for _, o := range ops {
		if strings.HasPrefix(p.s[p.i:], o.tok) {
			c.Op = o.op
			p.i += len(o.tok)
			found = true
			break
		}
	}
	if !found {
		return Component{}, p.errorf("expected attribute operator")
	}
	p.skipSpace()
	switch p.peek() {
	case '"', '\'':
		v, err := p.quoted()
		if err != nil {
			return Component{}, err
		}
		c.Value = v
	default:
		c.Value = p.ident()
		if c.Value == "" {
			return Component{}, p.errorf("expected attribute value")
		}
	}
	p.skipSpace()
	if p.peek() == 'i' || p.peek() == 'I' {
		c.IgnoreCase = true
		p.i++
		p.skipSpace()
	} else if p.peek() == 's' || p.peek() == 'S' {
		p.i++
		p.skipSpace()
	}
	if p.peek() != ']' {
		return Component{}, p.errorf("expected ']'")
	}
	p.i++
	return c, nil
}

func (p *parser) pseudoClass() (Component, error) {
	name := strings.ToLower(p.ident())
	if name == "" {
		return Component{}, p.errorf("expected pseudo-class")
	}
	args, hasArgs, err := p.arguments()
	if err != nil {
		return Component{}, err
	}
	switch name {
	case "host":
		c := Component{Kind: KindHost, Name: name}
		if hasArgs {
			inner, err := parseCompoundOnly(args)
			if err != nil {
				return Component{}, err
			}
			c.Inner = inner
		}
		return c, nil
	case "is", "where", "matches":
		list, err := p.list(name, args, hasArgs)
		return Component{Kind: KindIs, Name: name, List: list}, err
	case "not":
		list, err := p.list(name, args, hasArgs)
		return Component{Kind: KindNegation, Name: name, List: list}, err
	case "has":
		if !hasArgs {
			return Component{}, p.errorf(":has() needs an argument")
		}
		list, err := parseRelativeList(args)
		return Component{Kind: KindHas, Name: name, List: list}, err
	}
	if st, ok := StateFromName(name); ok && !hasArgs {
		return Component{Kind: KindState, Name: name, State: st}, nil
	}
	src := ":" + name
	if hasArgs {
		src += "(" + args + ")"
	}
	sel, err := cascadia.Parse(src)
	if err != nil {
		return Component{}, p.errorf("unsupported pseudo-class %s (%v)", src, err)
	}
	return Component{Kind: KindStructural, Name: name, structural: sel}, nil
}

func (p *parser) list(name, args string, hasArgs bool) ([]*Selector, error) {
	if !hasArgs {
		return nil, p.errorf(":%s() needs an argument", name)
	}
	return ParseList(args)
}

// pseudoElement parses what follows "::" and returns the component together
// with the implicit combinator which has to precede it.
func (p *parser) pseudoElement() (Component, Combinator, error) {
	name := strings.ToLower(p.ident())
	if name == "" {
		return Component{}, 0, p.errorf("expected pseudo-element")
	}
	args, hasArgs, err := p.arguments()
	if err != nil {
		return Component{}, 0, err
	}
	switch name {
	case "part":
		names := strings.Fields(args)
		if !hasArgs || len(names) == 0 {
			return Component{}, 0, p.errorf("::part() needs part names")
		}
		return Component{Kind: KindPart, Name: name, Names: names}, Part, nil
	case "slotted":
		if !hasArgs {
			return Component{}, 0, p.errorf("::slotted() needs an argument")
		}
		inner, err := parseCompoundOnly(args)
		if err != nil {
			return Component{}, 0, err
		}
		return Component{Kind: KindSlotted, Name: name, Inner: inner}, SlotAssignment, nil
	}
	if hasArgs {
		return Component{}, 0, p.errorf("unsupported functional pseudo-element ::%s()", name)
	}
	return Component{Kind: KindPseudoElement, Name: name}, PseudoElement, nil
}

// arguments reads a parenthesized argument, if present.
func (p *parser) arguments() (string, bool, error) {
	if p.peek() != '(' {
		return "", false, nil
	}
	p.i++
	start, depth := p.i, 1
	var quote byte
	for ; !p.eof(); p.i++ {
		ch := p.s[p.i]
		switch {
		case quote != 0:
			if ch == '\\' {
				p.i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth == 0 {
				args := strings.TrimSpace(p.s[start:p.i])
				p.i++
				return args, true, nil
			}
		}
	}
	return "", false, p.errorf("unbalanced parentheses")
}

func (p *parser) ident() string {
	start := p.i
	for !p.eof() {
		ch := p.s[p.i]
		if ch == '\\' && p.i+1 < len(p.s) {
			p.i += 2
			continue
		}
		if !isIdentChar(ch) {
			break
		}
		p.i++
	}
	return unescape(p.s[start:p.i])
}

func (p *parser) quoted() (string, error) {
	quote := p.s[p.i]
	p.i++
	var b strings.Builder
	for !p.eof() {
		ch := p.s[p.i]
		p.i++
		switch {
		case ch == '\\' && !p.eof():
			b.WriteByte(p.s[p.i])
			p.i++
		case ch == quote:
			return b.String(), nil
		default:
			b.WriteByte(ch)
		}
	}
	return "", p.errorf("unterminated string")
}

// parseCompoundOnly parses the argument of :host() or ::slotted(), which must
// be a single compound selector.
func parseCompoundOnly(text string) (*Selector, error) {
	sel, err := Parse(text)
	if err != nil {
		return nil, err
	}
	for _, c := range sel.components {
		if c.Kind == KindCombinator {
			return nil, fmt.Errorf("%q is not a compound selector: %w", text, ErrSyntax)
		}
	}
	return sel, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch == '-' || ch >= 0x80
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9'
}
