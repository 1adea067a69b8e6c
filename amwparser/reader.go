package amwparser

import (
	"bufio"
	"io"
	"strings"
)

// LineSource produces input lines on demand. ReadLine returns the next raw
// line without its terminator, or io.EOF when the input is exhausted.
// UnreadLine pushes the last line back; a capacity of one line is enough for
// the parser, which looks at most one line past the end of a block.
type LineSource interface {
	ReadLine() (string, error)
	UnreadLine(line string) bool
	LineNumber() int
}

type readerSource struct {
	r        *bufio.Reader
	lineno   int
	pushback *string
}

// NewLineSource wraps r in a LineSource with one-line pushback.
func NewLineSource(r io.Reader) LineSource {
	return &readerSource{r: bufio.NewReader(r)}
}

func (s *readerSource) ReadLine() (string, error) {
	if s.pushback != nil {
		line := *s.pushback
		s.pushback = nil
		s.lineno++
		return line, nil
	}
	line, err := s.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			// final line without terminator
			s.lineno++
			return line, nil
		}
		return "", err
	}
	s.lineno++
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func (s *readerSource) UnreadLine(line string) bool {
	if s.pushback != nil {
		return false
	}
	s.pushback = &line
	s.lineno--
	return true
}

func (s *readerSource) LineNumber() int {
	return s.lineno
}

func substrFrom(s string, pos int) string {
	if pos >= len(s) {
		return ""
	}
	return s[pos:]
}

// skipSpaces returns the position of the first non-blank character at or
// after pos, or len(s).
func skipSpaces(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

func skipDigits(s string, pos int) int {
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		pos++
	}
	return pos
}

func charAt(s string, pos int) byte {
	if pos < 0 || pos >= len(s) {
		return 0
	}
	return s[pos]
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t'
}

func spaceOrEOLAt(s string, pos int) bool {
	if pos >= len(s) {
		return true
	}
	return isSpaceByte(s[pos])
}

// readLine pulls the next raw line, right-trims it and measures its indent.
func (p *Parser) readLine() error {
	line, err := p.src.ReadLine()
	if err != nil {
		return err
	}
	p.line = strings.TrimRight(line, " \t")
	p.indent = skipSpaces(p.line, 0)
	p.lineNumber = p.src.LineNumber()
	return nil
}

func (p *Parser) isCommentLine() bool {
	return charAt(p.line, p.indent) == commentChar
}

// readBlockLine reads the next line belonging to the current block.
// It returns errEndOfBlock when a non-comment line dedents below blockIndent
// (the line is pushed back to the source) or when input ends. While
// skipComments is set, leading blank and comment lines are dropped.
func (p *Parser) readBlockLine() error {
	if p.eof {
		if p.blockLevel > 0 {
			return errEndOfBlock
		}
		return io.EOF
	}
	for {
		err := p.readLine()
		if err == io.EOF {
			p.eof = true
			p.line = ""
			return errEndOfBlock
		}
		if err != nil {
			return err
		}
		if p.skipComments {
			if len(p.line) == 0 || p.isCommentLine() {
				continue
			}
			p.skipComments = false
		}
		if len(p.line) == 0 {
			// blank line belongs to any block
			return nil
		}
		if p.indent >= p.blockIndent {
			return nil
		}
		if p.isCommentLine() {
			// comments may dedent freely
			continue
		}
		// dedent of a real line ends the block
		p.src.UnreadLine(p.line)
		p.line = ""
		return errEndOfBlock
	}
}

// readBlock collects the lines of the current block, each stripped of the
// block indent, starting with the current line.
func (p *Parser) readBlock() ([]string, error) {
	var lines []string
	for {
		lines = append(lines, substrFrom(p.line, p.blockIndent))
		err := p.readBlockLine()
		if err == errEndOfBlock {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// startPosition returns the position of the first non-space character of the
// current block. The block may start inside the line for nested values.
func (p *Parser) startPosition() int {
	if p.blockIndent < p.indent {
		return p.indent
	}
	return skipSpaces(p.line, p.blockIndent)
}

func (p *Parser) commentOrEOL(pos int) bool {
	pos = skipSpaces(p.line, pos)
	return pos >= len(p.line) || p.line[pos] == commentChar
}
