package amwparser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

// RegisterConversion installs a block parser for the conversion specifier
// :name:. Names are trimmed and must be XID identifiers; built-in names may
// be overridden. Register before calling Parse.
func (p *Parser) RegisterConversion(name string, fn BlockParserFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty conversion specifier name")
	}
	for i, r := range name {
		if r == utf8.RuneError {
			return fmt.Errorf("conversion specifier %q is not valid UTF-8", name)
		}
		if i == 0 {
			if !xid.Start(r) {
				return fmt.Errorf("conversion specifier %q is not an identifier", name)
			}
		} else if !xid.Continue(r) {
			return fmt.Errorf("conversion specifier %q is not an identifier", name)
		}
	}
	if fn == nil {
		return fmt.Errorf("nil parser function for conversion specifier %q", name)
	}
	p.conv[name] = fn
	return nil
}

// parseConvspec extracts a conversion specifier whose opening colon is at
// openColonPos. The content between the colons is trimmed and must name a
// registered parser; the closing colon must abut whitespace or end of line.
// Returns the name and the position just past the closing colon.
func (p *Parser) parseConvspec(openColonPos int) (name string, endPos int, ok bool) {
	start := openColonPos + 1
	i := strings.IndexByte(p.line[start:], ':')
	if i < 0 {
		return "", 0, false
	}
	closing := start + i
	if closing == start {
		// empty conversion specifier
		return "", 0, false
	}
	if !spaceOrEOLAt(p.line, closing+1) {
		return "", 0, false
	}
	name = strings.TrimSpace(p.line[start:closing])
	if _, registered := p.conv[name]; !registered {
		return "", 0, false
	}
	return name, closing + 1, true
}

// parseRawValue reads the block verbatim, stripped of the block indent only.
// Multi-line blocks get a trailing line break.
func (p *Parser) parseRawValue() (Value, error) {
	lines, err := p.readBlock()
	if err != nil {
		return nil, err
	}
	if len(lines) > 1 {
		lines = append(lines, "")
	}
	return String(strings.Join(lines, "\n")), nil
}

// parseLiteralString reads the block, dedents it, drops trailing empty
// lines and joins with line breaks. Multi-line results keep a trailing
// line break.
func (p *Parser) parseLiteralString() (Value, error) {
	lines, err := p.readBlock()
	if err != nil {
		return nil, err
	}
	lines = dedent(lines)
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 1 {
		lines = append(lines, "")
	}
	return String(strings.Join(lines, "\n")), nil
}

func (p *Parser) parseFoldedString() (Value, error) {
	lines, err := p.readBlock()
	if err != nil {
		return nil, err
	}
	s, err := p.foldLines(lines, 0, nil)
	if err != nil {
		return nil, err
	}
	return String(s), nil
}
