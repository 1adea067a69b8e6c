package amwparser

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const amwNumberTerminators = "#:"

// parseUnsigned accumulates an unsigned integer in the given radix starting
// at *pos. Single quotes and underscores between digits are separators.
// *pos is advanced to where conversion stopped.
func (p *Parser) parseUnsigned(pos *int, radix uint64) (uint64, error) {
	start := *pos
	var result uint64
	digitSeen := false
	separatorSeen := false
	i := *pos
	for {
		c := charAt(p.line, i)

		if c == '\'' || c == '_' {
			if separatorSeen {
				return 0, p.errorAt(i, "Duplicate separator in the number")
			}
			if !digitSeen {
				return 0, p.errorAt(i, "Separator is not allowed in the beginning of number")
			}
			separatorSeen = true
			i++
			if i >= len(p.line) {
				return 0, p.errorAt(i, "Bad number")
			}
			continue
		}
		afterSeparator := separatorSeen
		separatorSeen = false

		var d uint64
		ok := false
		if radix == 16 {
			switch {
			case c >= '0' && c <= '9':
				d, ok = uint64(c-'0'), true
			case c >= 'a' && c <= 'f':
				d, ok = uint64(c-'a'+10), true
			case c >= 'A' && c <= 'F':
				d, ok = uint64(c-'A'+10), true
			}
		} else if c >= '0' && c < '0'+byte(radix) {
			d, ok = uint64(c-'0'), true
		}
		if !ok {
			if !digitSeen || afterSeparator {
				return 0, p.errorAt(i, "Bad number")
			}
			*pos = i
			return result, nil
		}

		if result > math.MaxUint64/radix {
			return 0, p.errorAt(start, "Numeric overflow")
		}
		n := result*radix + d
		if n < result {
			return 0, p.errorAt(start, "Numeric overflow")
		}
		result = n

		i++
		digitSeen = true
		if i >= len(p.line) {
			*pos = i
			return result, nil
		}
	}
}

// parseNumber parses an integer or float starting at startPos, which points
// to the first digit. A leading 0 may carry a radix letter (b/o/x). The
// result stops at whitespace or one of the terminator characters; anything
// else is an error. The sign is folded in afterwards: a magnitude above
// MaxInt64 stays unsigned when non-negative and overflows when negative.
func (p *Parser) parseNumber(startPos, sign int, terminators string) (Value, int, error) {
	pos := startPos
	radix := uint64(10)
	isFloat := false

	if charAt(p.line, pos) == '0' {
		switch charAt(p.line, pos+1) {
		case 'b', 'B':
			radix, pos = 2, pos+2
		case 'o', 'O':
			radix, pos = 8, pos+2
		case 'x', 'X':
			radix, pos = 16, pos+2
		}
		if pos >= len(p.line) {
			return nil, 0, p.errorAt(startPos, "Bad number")
		}
	}

	base, err := p.parseUnsigned(&pos, radix)
	if err != nil {
		return nil, 0, err
	}

	if pos < len(p.line) {
		c := p.line[pos]
		if c == '.' {
			if radix != 10 {
				return nil, 0, p.errorAt(startPos, "Only decimal representation is supported for floating point numbers")
			}
			isFloat = true
			pos = skipDigits(p.line, pos+1)
		}
		if pos < len(p.line) {
			c = p.line[pos]
			if c == 'e' || c == 'E' {
				if radix != 10 {
					return nil, 0, p.errorAt(startPos, "Only decimal representation is supported for floating point numbers")
				}
				isFloat = true
				pos++
				if pos < len(p.line) {
					if c := p.line[pos]; c == '-' || c == '+' {
						pos++
					}
					next := skipDigits(p.line, pos)
					if next == pos {
						return nil, 0, p.errorAt(startPos, "Bad exponent")
					}
					pos = next
					if pos < len(p.line) {
						if c := p.line[pos]; !(isSpaceByte(c) || strings.IndexByte(terminators, c) >= 0) {
							return nil, 0, p.errorAt(startPos, "Bad number")
						}
					}
				}
			} else if !(isSpaceByte(c) || strings.IndexByte(terminators, c) >= 0) {
				return nil, 0, p.errorAt(startPos, "Bad number")
			}
		}
	}

	if isFloat {
		lit := p.line[startPos:pos]
		// drop digit separators and a stray trailing exponent marker
		lit = strings.Map(func(r rune) rune {
			if r == '\'' || r == '_' {
				return -1
			}
			return r
		}, lit)
		if c := lit[len(lit)-1]; c == 'e' || c == 'E' {
			lit = lit[:len(lit)-1]
		}
		n, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			var ne *strconv.NumError
			if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
				return nil, 0, p.errorAt(startPos, "Floating point overflow")
			}
			return nil, 0, p.errorAt(startPos, "Floating point conversion error")
		}
		if sign < 0 && n != 0 {
			n = -n
		}
		return Float(n), pos, nil
	}

	if base > math.MaxInt64 {
		if sign < 0 {
			return nil, 0, p.errorAt(startPos, "Integer overflow")
		}
		return Uint(base), pos, nil
	}
	if sign < 0 {
		return Int(-int64(base)), pos, nil
	}
	return Int(int64(base)), pos, nil
}
