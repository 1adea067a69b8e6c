// Package amwparser parses AMW, an indentation-structured markup language,
// into a dynamically-typed value tree. A document yields a single root
// value; scalars cover null, booleans, integers in several radixes, floats,
// quoted and block strings, date/times and timestamps, and the containers
// are ordered lists and insertion-ordered maps. Blocks prefixed with a
// conversion specifier such as :literal: or :json: are handed to a
// registered block parser.
package amwparser

import (
	"errors"
	"io"
	"strings"
)

const commentChar = '#'

// MaxRecursionDepth bounds both block nesting and JSON nesting.
const MaxRecursionDepth = 100

// BlockParserFunc parses the current block and returns its value. Custom
// parsers installed with RegisterConversion must leave the parser the way
// the built-in ones do: the lines after the block not yet read, so that the
// caller's next block-line read returns the first of them.
type BlockParserFunc func(p *Parser) (Value, error)

// Parser is a single-use parser over a line source. It is not safe for
// concurrent use; run one parser per source.
type Parser struct {
	src  LineSource
	file string

	line       string // current line, right-trimmed
	indent     int    // leading spaces of line
	lineNumber int

	blockIndent   int // minimum column for lines of the current block
	blockLevel    int
	maxBlockLevel int

	jsonDepth    int
	maxJSONDepth int

	skipComments bool // drop blank/comment lines at the head of the block
	pendingLine  bool // current line was pre-read by a value-end check
	eof          bool

	conv map[string]BlockParserFunc
}

// NewParser creates a parser reading from src. file names the source in
// error positions and may be empty.
func NewParser(src LineSource, file string) *Parser {
	p := &Parser{
		src:           src,
		file:          file,
		blockLevel:    1,
		maxBlockLevel: MaxRecursionDepth,
		jsonDepth:     1,
		maxJSONDepth:  MaxRecursionDepth,
		skipComments:  true,
	}
	p.conv = map[string]BlockParserFunc{
		"raw":       (*Parser).parseRawValue,
		"literal":   (*Parser).parseLiteralString,
		"folded":    (*Parser).parseFoldedString,
		"datetime":  (*Parser).parseDateTime,
		"timestamp": (*Parser).parseTimestamp,
		"json":      (*Parser).parseJSONBlock,
	}
	return p
}

// SetMaxDepth overrides the recursion guards for block and JSON nesting.
func (p *Parser) SetMaxDepth(blocks, json int) {
	p.maxBlockLevel = blocks
	p.maxJSONDepth = json
}

// Parse parses one AMW document and returns its root value. Empty input
// yields io.EOF; anything after the top-level value is an error.
func (p *Parser) Parse() (Value, error) {
	// prime with the first line, detecting empty input
	err := p.readBlockLine()
	if errors.Is(err, errEndOfBlock) && p.eof {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	result, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	// only blank lines and comments may follow the top-level value
	for {
		if p.pendingLine {
			p.pendingLine = false
		} else {
			err = p.readBlockLine()
			if p.eof {
				return result, nil
			}
			if err != nil && !errors.Is(err, errEndOfBlock) {
				return nil, err
			}
		}
		if len(p.line) == 0 || p.isCommentLine() {
			continue
		}
		return nil, p.errorAt(p.indent, "Extra data after parsed value")
	}
}

// nextSiblingLine positions the parser at the next non-blank, non-comment
// line of the current block, starting with a line pre-read by a value-end
// check if there is one.
func (p *Parser) nextSiblingLine() error {
	for {
		if p.pendingLine {
			p.pendingLine = false
		} else if err := p.readBlockLine(); err != nil {
			return err
		}
		if len(p.line) == 0 || p.isCommentLine() {
			continue
		}
		return nil
	}
}

// parseNestedBlock sets the block indent to blockPos and runs fn over the
// nested block. The previous indent and level are restored on all paths.
func (p *Parser) parseNestedBlock(blockPos int, fn BlockParserFunc) (Value, error) {
	if p.blockLevel >= p.maxBlockLevel {
		return nil, p.errorAt(p.indent, "Too many nested blocks")
	}
	p.blockLevel++
	saved := p.blockIndent
	p.blockIndent = blockPos

	v, err := fn(p)

	p.blockIndent = saved
	p.blockLevel--
	return v, err
}

// parseNestedBlockFromNextLine reads the next line one column deeper and
// runs fn over the block starting there.
func (p *Parser) parseNestedBlockFromNextLine(fn BlockParserFunc) (Value, error) {
	p.blockIndent++
	p.skipComments = true
	err := p.readBlockLine()
	p.blockIndent--

	if errors.Is(err, errEndOfBlock) {
		return nil, p.errorAt(p.indent, "Empty block")
	}
	if err != nil {
		return nil, err
	}
	return p.parseNestedBlock(p.blockIndent+1, fn)
}

func (p *Parser) parseValue() (Value, error) {
	v, _, _, err := p.parseValueEx(false)
	return v, err
}

// parseValueEx parses a value starting at the block start of the current
// line. With expectKey set the value must be a map key ending in a key-value
// separator; valuePos and convspec describe what followed the separator.
func (p *Parser) parseValueEx(expectKey bool) (v Value, valuePos int, convspec string, err error) {
	startPos := p.startPosition()
	c := charAt(p.line, startPos)

	if c == ':' {
		// leading colon may open a conversion specifier; map keys cannot
		// start with one
		if expectKey {
			return nil, 0, "", p.errorAt(startPos, "Map key expected and it cannot start with colon")
		}
		name, pos, ok := p.parseConvspec(startPos)
		if !ok {
			v, err = p.parseLiteralString()
			return v, 0, "", err
		}
		if pos >= len(p.line) {
			// specifier is followed by a line break, the value is the
			// rest of the current block
			err = p.readBlockLine()
			if errors.Is(err, errEndOfBlock) {
				return nil, 0, "", p.errorAt(p.indent, "Empty block")
			}
			if err != nil {
				return nil, 0, "", err
			}
			v, err = p.conv[name](p)
			return v, 0, "", err
		}
		v, err = p.parseNestedBlock(pos, p.conv[name])
		return v, 0, "", err
	}

	dashLiteral := false
	if c == '-' {
		next := startPos + 1
		if nc := charAt(p.line, next); nc >= '0' && nc <= '9' {
			num, end, err := p.parseNumber(next, -1, amwNumberTerminators)
			if err != nil {
				return nil, 0, "", err
			}
			return p.checkValueEnd(num, end, expectKey)
		}
		if spaceOrEOLAt(p.line, next) {
			if expectKey {
				return nil, 0, "", p.errorAt(startPos, "Map key expected and it cannot be a list")
			}
			v, err = p.parseList()
			return v, 0, "", err
		}
		dashLiteral = true
	}

	if !dashLiteral {
		if c == '"' || c == '\'' {
			startLine := p.lineNumber
			s, end, err := p.parseQuotedString(startPos)
			if err != nil {
				return nil, 0, "", err
			}
			if p.lineNumber == startLine {
				// single-line string may still be a map key
				return p.checkValueEnd(s, end, expectKey)
			}
			if p.commentOrEOL(end) {
				return s, 0, "", nil
			}
			return nil, 0, "", p.errorAt(end, "Bad character after quoted string")
		}

		if kw, kwlen, ok := keywordAt(p.line, startPos); ok {
			return p.checkValueEnd(kw, startPos+kwlen, expectKey)
		}

		if c == '+' {
			if nc := charAt(p.line, startPos+1); nc >= '0' && nc <= '9' {
				startPos++
				c = nc
			}
		}
		if c >= '0' && c <= '9' {
			num, end, err := p.parseNumber(startPos, 1, amwNumberTerminators)
			if err != nil {
				return nil, 0, "", err
			}
			return p.checkValueEnd(num, end, expectKey)
		}
	}

	// literal string or map: the first colon qualifying as a key-value
	// separator decides
	for pos := startPos; ; {
		i := strings.IndexByte(p.line[pos:], ':')
		if i < 0 {
			break
		}
		colonPos := pos + i
		if ok, cs, vp := p.isKVSeparator(colonPos); ok {
			key := strings.TrimRight(p.line[startPos:colonPos], " \t")
			if expectKey {
				return String(key), vp, cs, nil
			}
			v, err = p.parseMap(key, cs, vp)
			return v, 0, "", err
		}
		pos = colonPos + 1
	}

	if expectKey {
		return nil, 0, "", p.errorAt(p.indent, "Not a key")
	}
	v, err = p.parseLiteralString()
	return v, 0, "", err
}

// keywordAt matches a reserved keyword immediately followed by a value
// terminator.
func keywordAt(line string, pos int) (Value, int, bool) {
	rest := line[pos:]
	switch {
	case strings.HasPrefix(rest, "null") && isValueTerminator(charAt(line, pos+4)):
		return Null{}, 4, true
	case strings.HasPrefix(rest, "true") && isValueTerminator(charAt(line, pos+4)):
		return Bool(true), 4, true
	case strings.HasPrefix(rest, "false") && isValueTerminator(charAt(line, pos+5)):
		return Bool(false), 5, true
	}
	return nil, 0, false
}

func isValueTerminator(c byte) bool {
	return c == 0 || isSpaceByte(c) || c == ':' || c == commentChar
}

// checkValueEnd inspects what follows a scalar at endPos. Whitespace or a
// comment ends a standalone value and the next block line is read. A
// key-value separator either satisfies an expected key or turns the scalar
// into the first key of a map.
func (p *Parser) checkValueEnd(v Value, endPos int, expectKey bool) (Value, int, string, error) {
	endPos = skipSpaces(p.line, endPos)
	if endPos >= len(p.line) {
		if expectKey {
			return nil, 0, "", p.errorAt(endPos, "Map key expected")
		}
		if err := p.readAfterValue(); err != nil {
			return nil, 0, "", err
		}
		return v, 0, "", nil
	}

	c := p.line[endPos]
	if c == ':' {
		ok, convspec, valuePos := p.isKVSeparator(endPos)
		if ok {
			if expectKey {
				return v, valuePos, convspec, nil
			}
			m, err := p.parseMap(canonicalKey(v), convspec, valuePos)
			return m, 0, "", err
		}
		return nil, 0, "", p.errorAt(endPos+1, "Bad character encountered")
	}
	if c != commentChar {
		return nil, 0, "", p.errorAt(endPos, "Bad character encountered")
	}

	if err := p.readAfterValue(); err != nil {
		return nil, 0, "", err
	}
	return v, 0, "", nil
}

// readAfterValue repositions past a finished scalar. A line read here still
// belongs to the enclosing list or map; it is flagged as pending so the
// sibling checks inspect it instead of reading another line.
func (p *Parser) readAfterValue() error {
	err := p.readBlockLine()
	if errors.Is(err, errEndOfBlock) {
		return nil
	}
	if err != nil {
		return err
	}
	p.pendingLine = true
	return nil
}

// isKVSeparator reports whether the colon at colonPos is a key-value
// separator: followed by end of line, by whitespace, or by a conversion
// specifier. valuePos is the first column of a same-line value.
func (p *Parser) isKVSeparator(colonPos int) (ok bool, convspec string, valuePos int) {
	next := colonPos + 1
	if next >= len(p.line) {
		return true, "", next
	}
	c := p.line[next]
	if isSpaceByte(c) {
		// the value must be separated from the key by at least one space
		valuePos = next + 1
		next = skipSpaces(p.line, next)
		// the line is right-trimmed, so a non-space character exists here
		if p.line[next] != ':' {
			return true, "", valuePos
		}
	} else if c != ':' {
		return false, "", 0
	}

	if name, vp, ok := p.parseConvspec(next); ok {
		return true, name, vp
	}
	// bad conversion specifier, not a separator
	return false, "", 0
}

func (p *Parser) parseList() (Value, error) {
	var result List

	// all items must share the column of the first one
	itemIndent := p.startPosition()

	for {
		next := itemIndent + 1
		if !spaceOrEOLAt(p.line, next) {
			return nil, p.errorAt(itemIndent, "Bad list item")
		}

		var item Value
		var err error
		if p.commentOrEOL(next) {
			item, err = p.parseNestedBlockFromNextLine((*Parser).parseValue)
		} else {
			// nested block starts on the same line, after "- "
			item, err = p.parseNestedBlock(next+1, (*Parser).parseValue)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, item)

		err = p.nextSiblingLine()
		if errors.Is(err, errEndOfBlock) {
			break
		}
		if err != nil {
			return nil, err
		}
		if p.indent != itemIndent {
			return nil, p.errorAt(p.indent, "Bad indentation of list item")
		}
	}
	return result, nil
}

// parseMap parses a map whose first key is already consumed. valuePos is
// where the first value starts on the current line; convspec names the
// block parser for the value when the key carried one.
func (p *Parser) parseMap(key, convspec string, valuePos int) (Value, error) {
	result := &Map{}

	// all keys must share the column of the first one
	keyIndent := p.startPosition()

	for {
		fn := BlockParserFunc((*Parser).parseValue)
		if convspec != "" {
			fn = p.conv[convspec]
		}
		var value Value
		var err error
		if p.commentOrEOL(valuePos) {
			value, err = p.parseNestedBlockFromNextLine(fn)
		} else {
			value, err = p.parseNestedBlock(valuePos, fn)
		}
		if err != nil {
			return nil, err
		}
		result.Set(key, value)

		err = p.nextSiblingLine()
		if errors.Is(err, errEndOfBlock) {
			break
		}
		if err != nil {
			return nil, err
		}
		if p.indent != keyIndent {
			return nil, p.errorAt(p.indent, "Bad indentation of map key")
		}

		var kv Value
		kv, valuePos, convspec, err = p.parseValueEx(true)
		if err != nil {
			return nil, err
		}
		key = canonicalKey(kv)
	}
	return result, nil
}
