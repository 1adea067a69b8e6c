package amwparser

import (
	"errors"
	"strings"
)

// unescapeLine expands escape sequences in line from startPos up to the
// closing quote or end of line. lineNumber is the input line the text came
// from, used for diagnostics. Returns the unescaped text and the position
// where processing stopped (the closing quote, if found).
func (p *Parser) unescapeLine(line string, lineNumber int, quote byte, startPos int) (string, int, error) {
	if startPos >= len(line) {
		return "", startPos, nil
	}
	var b strings.Builder
	b.Grow(len(line) - startPos)
	pos := startPos
	for pos < len(line) {
		c := line[pos]
		if c == quote {
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			pos++
			continue
		}
		pos++
		if pos >= len(line) {
			// backslash at end of line stays in the result
			b.WriteByte('\\')
			break
		}
		c = line[pos]
		pos++
		switch c {
		case '\'', '"', '?', '\\':
			b.WriteByte(c)
		case 'a':
			b.WriteByte(0x07)
		case 'b':
			b.WriteByte(0x08)
		case 'f':
			b.WriteByte(0x0c)
		case 'n':
			b.WriteByte(0x0a)
		case 'r':
			b.WriteByte(0x0d)
		case 't':
			b.WriteByte(0x09)
		case 'v':
			b.WriteByte(0x0b)
		case 'o':
			// 1 to 3 octal digits; fewer than 3 only at end of line
			var v rune
			for i := 0; i < 3; i++ {
				if pos >= len(line) {
					if i == 0 {
						return "", pos, p.errorAtLine(lineNumber, pos, "Incomplete octal value")
					}
					break
				}
				d := line[pos]
				if d < '0' || d > '7' {
					return "", pos, p.errorAtLine(lineNumber, pos, "Bad octal value")
				}
				v = v<<3 | rune(d-'0')
				pos++
			}
			b.WriteRune(v)
		case 'x', 'u', 'U':
			hexlen := 2
			switch c {
			case 'u':
				hexlen = 4
			case 'U':
				hexlen = 8
			}
			var v rune
			for i := 0; i < hexlen; i++ {
				if pos >= len(line) {
					return "", pos, p.errorAtLine(lineNumber, pos, "Incomplete hexadecimal value")
				}
				d := hexDigit(line[pos])
				if d < 0 {
					return "", pos, p.errorAtLine(lineNumber, pos, "Bad hexadecimal value")
				}
				v = v<<4 | rune(d)
				pos++
			}
			b.WriteRune(v)
		default:
			// not an escape sequence, keep both characters
			b.WriteByte('\\')
			b.WriteByte(c)
		}
	}
	return b.String(), pos, nil
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// findClosingQuote searches for an unescaped quote from startPos on.
func findClosingQuote(line string, quote byte, startPos int) (int, bool) {
	for {
		i := strings.IndexByte(line[startPos:], quote)
		if i < 0 {
			return 0, false
		}
		idx := startPos + i
		if idx > 0 && line[idx-1] == '\\' {
			startPos = idx + 1
			continue
		}
		return idx, true
	}
}

// parseQuotedString parses a quoted string whose opening quote is at openPos
// in the current line. A string without a closing quote on the opening line
// continues as a nested block indented one past the quote; the block lines
// are folded and unescaped. Returns the position just past the closing quote.
func (p *Parser) parseQuotedString(openPos int) (String, int, error) {
	quote := p.line[openPos]

	if end, ok := findClosingQuote(p.line, quote, openPos+1); ok {
		s, _, err := p.unescapeLine(p.line, p.lineNumber, quote, openPos+1)
		if err != nil {
			return "", 0, err
		}
		return String(s), end + 1, nil
	}

	blockIndent := openPos + 1
	saved := p.blockIndent
	p.blockIndent = blockIndent
	p.blockLevel++

	var lines []string
	var lineNumbers []int
	endPos := 0
	closed := false
	var readErr error
	for {
		lineNumbers = append(lineNumbers, p.lineNumber)
		if end, ok := findClosingQuote(p.line, quote, blockIndent); ok {
			start := blockIndent
			if start > end {
				start = end
			}
			lines = append(lines, strings.TrimRight(p.line[start:end], " \t"))
			endPos = end + 1
			closed = true
			break
		}
		lines = append(lines, substrFrom(p.line, blockIndent))
		err := p.readBlockLine()
		if errors.Is(err, errEndOfBlock) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	p.blockIndent = saved
	p.blockLevel--
	if readErr != nil {
		return "", 0, readErr
	}

	if !closed {
		// one more chance: a lone quote at the opening column terminates
		// the string with an empty final line
		err := p.readBlockLine()
		if errors.Is(err, errEndOfBlock) {
			return "", 0, p.errorAt(p.indent, "String has no closing quote")
		}
		if err != nil {
			return "", 0, err
		}
		if p.indent == openPos && charAt(p.line, p.indent) == quote {
			endPos = openPos + 1
		} else {
			return "", 0, p.errorAt(p.indent, "String has no closing quote")
		}
	}

	s, err := p.foldLines(lines, quote, lineNumbers)
	if err != nil {
		return "", 0, err
	}
	return String(s), endPos, nil
}

// foldLines dedents the lines, drops leading and trailing empty ones and
// joins the rest with single spaces. An empty line becomes a line feed and
// suppresses the following separator, as does a line starting with
// whitespace. When quote is nonzero each line is unescaped with its own
// original line number.
func (p *Parser) foldLines(lines []string, quote byte, lineNumbers []int) (string, error) {
	lines = dedent(lines)

	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	if start == end {
		return "", nil
	}

	var b strings.Builder
	prevLF := false
	for i := start; i < end; i++ {
		line := lines[i]
		if i > start {
			if line == "" {
				b.WriteByte('\n')
				prevLF = true
				continue
			}
			if prevLF {
				prevLF = false
			} else if !isSpaceByte(line[0]) {
				b.WriteByte(' ')
			}
		}
		if quote != 0 {
			s, _, err := p.unescapeLine(line, lineNumbers[i], quote, 0)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		} else {
			b.WriteString(line)
		}
	}
	return b.String(), nil
}

// dedent strips the longest common leading-space prefix of the non-empty
// lines.
func dedent(lines []string) []string {
	common := -1
	for _, l := range lines {
		if l == "" {
			continue
		}
		n := skipSpaces(l, 0)
		if common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= common {
			out[i] = l[common:]
		}
	}
	return out
}
