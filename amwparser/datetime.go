package amwparser

// parseNanosecondFrac parses 1 to 9 fractional digits starting at *pos and
// scales them to nanoseconds. *pos is always updated.
func (p *Parser) parseNanosecondFrac(pos *int) (uint32, bool) {
	var order = [...]uint32{
		1000000000,
		100000000,
		10000000,
		1000000,
		100000,
		10000,
		1000,
		100,
		10,
		1,
	}
	i := 0
	var nanoseconds uint32
	pp := *pos
	for pp < len(p.line) {
		c := p.line[pp]
		if c < '0' || c > '9' {
			break
		}
		if i == 9 {
			*pos = pp
			return 0, false
		}
		nanoseconds = nanoseconds*10 + uint32(c-'0')
		i++
		pp++
	}
	*pos = pp
	if i == 0 {
		return 0, false
	}
	return nanoseconds * order[i], true
}

// parseDateTime parses a date/time value starting at the block start of the
// current line. Layout: YYYY[-]MM[-]DD, then optionally T or whitespace and
// HH[:]MM[:]SS with optional .frac and optional zone (Z or +-HH[:][MM]).
// Numeric fields are fixed-width; a trailing comment is permitted.
func (p *Parser) parseDateTime() (Value, error) {
	const badDatetime = "Bad date/time"
	var dt DateTime
	pos := p.startPosition()

	digits := func(n int) (int, bool) {
		v := 0
		for i := 0; i < n; i++ {
			c := charAt(p.line, pos)
			if c < '0' || c > '9' {
				return 0, false
			}
			v = v*10 + int(c-'0')
			pos++
		}
		return v, true
	}

	var ok bool
	if dt.Year, ok = digits(4); !ok {
		return nil, p.errorAt(pos, badDatetime)
	}
	if charAt(p.line, pos) == '-' {
		pos++
	}
	if dt.Month, ok = digits(2); !ok {
		return nil, p.errorAt(pos, badDatetime)
	}
	if charAt(p.line, pos) == '-' {
		pos++
	}
	if dt.Day, ok = digits(2); !ok {
		return nil, p.errorAt(pos, badDatetime)
	}

	// the time of day is optional, separated by T or whitespace
	if charAt(p.line, pos) == 'T' {
		pos++
	} else {
		pos = skipSpaces(p.line, pos)
		if pos >= len(p.line) || p.line[pos] == commentChar {
			return dt, nil
		}
	}

	if dt.Hour, ok = digits(2); !ok {
		return nil, p.errorAt(pos, badDatetime)
	}
	if charAt(p.line, pos) == ':' {
		pos++
	}
	if dt.Minute, ok = digits(2); !ok {
		return nil, p.errorAt(pos, badDatetime)
	}
	if charAt(p.line, pos) == ':' {
		pos++
	}
	if dt.Second, ok = digits(2); !ok {
		return nil, p.errorAt(pos, badDatetime)
	}

	c := charAt(p.line, pos)
	if c == 'Z' {
		pos++
		if err := p.checkDateTimeEnd(pos, badDatetime); err != nil {
			return nil, err
		}
		return dt, nil
	}
	if c == '.' {
		pos++
		frac, ok := p.parseNanosecondFrac(&pos)
		if !ok {
			return nil, p.errorAt(pos, badDatetime)
		}
		dt.Nanosecond = frac
		c = charAt(p.line, pos)
	}
	if c == 'Z' {
		pos++
	} else if c == '+' || c == '-' {
		sign := 1
		if c == '-' {
			sign = -1
		}
		pos++
		offsetHour, ok := digits(2)
		if !ok {
			return nil, p.errorAt(pos, badDatetime)
		}
		if charAt(p.line, pos) == ':' {
			pos++
		}
		offsetMinute := 0
		if c := charAt(p.line, pos); c >= '0' && c <= '9' {
			if offsetMinute, ok = digits(2); !ok {
				return nil, p.errorAt(pos, badDatetime)
			}
		}
		dt.GMTOffset = sign * (offsetHour*60 + offsetMinute)
	}

	if err := p.checkDateTimeEnd(pos, badDatetime); err != nil {
		return nil, err
	}
	return dt, nil
}

func (p *Parser) checkDateTimeEnd(pos int, desc string) error {
	pos = skipSpaces(p.line, pos)
	if pos < len(p.line) && p.line[pos] != commentChar {
		return p.errorAt(pos, "%s", desc)
	}
	return nil
}

// parseTimestamp parses decimal seconds with an optional nanosecond
// fraction; a trailing comment is permitted.
func (p *Parser) parseTimestamp() (Value, error) {
	const badTimestamp = "Bad timestamp"
	var ts Timestamp
	pos := p.startPosition()

	seconds, err := p.parseUnsigned(&pos, 10)
	if err != nil {
		return nil, err
	}
	ts.Seconds = seconds

	if pos >= len(p.line) {
		return ts, nil
	}
	if p.line[pos] == '.' {
		pos++
		frac, ok := p.parseNanosecondFrac(&pos)
		if !ok {
			return nil, p.errorAt(pos, badTimestamp)
		}
		ts.Nanoseconds = frac
	}
	if !p.commentOrEOL(pos) {
		return nil, p.errorAt(pos, badTimestamp)
	}
	return ts, nil
}
