package amwparser

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, input string) Value {
	t.Helper()
	v, err := NewParser(NewLineSource(strings.NewReader(input)), "test.amw").Parse()
	require.NoError(t, err)
	return v
}

func parseDocErr(t *testing.T, input string) Error {
	t.Helper()
	_, err := NewParser(NewLineSource(strings.NewReader(input)), "test.amw").Parse()
	var perr Error
	require.ErrorAs(t, err, &perr)
	return perr
}

func assertTree(t *testing.T, expected, got Value) {
	t.Helper()
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("value tree mismatch (-want +got):\n%s", diff)
	}
}

func entries(pairs ...MapEntry) *Map {
	return &Map{Entries: pairs}
}

func e(key string, v Value) MapEntry {
	return MapEntry{Key: key, Value: v}
}

func TestParseScalars(t *testing.T) {
	test := func(input string, expected Value) func(*testing.T) {
		return func(t *testing.T) {
			assertTree(t, expected, parseDoc(t, input))
		}
	}
	t.Run("", test("null\n", Null{}))
	t.Run("", test("true\n", Bool(true)))
	t.Run("", test("false\n", Bool(false)))
	t.Run("", test("42\n", Int(42)))
	t.Run("", test("-42\n", Int(-42)))
	t.Run("", test("+42\n", Int(42)))
	t.Run("", test("3.5\n", Float(3.5)))
	t.Run("", test("0x10\n", Int(16)))
	t.Run("", test("\"quoted\"\n", String("quoted")))
	t.Run("", test("'single'\n", String("single")))
	t.Run("", test("bare words\n", String("bare words")))
	t.Run("", test("42 # with comment\n", Int(42)))
}

func TestParseMapSimple(t *testing.T) {
	assertTree(t,
		entries(e("a", Int(1)), e("b", Int(2))),
		parseDoc(t, "a: 1\nb: 2\n"))
}

func TestParseListSimple(t *testing.T) {
	assertTree(t,
		List{Int(1), Int(2), Int(-3)},
		parseDoc(t, "- 1\n- 2\n- -3\n"))
}

func TestParseNestedContainers(t *testing.T) {
	input := strings.Join([]string{
		"name: sample",
		"items:",
		"  - 1",
		"  - 2",
		"settings:",
		"  debug: true",
		"  level: 3",
		"",
	}, "\n")
	assertTree(t,
		entries(
			e("name", String("sample")),
			e("items", List{Int(1), Int(2)}),
			e("settings", entries(e("debug", Bool(true)), e("level", Int(3)))),
		),
		parseDoc(t, input))
}

func TestParseListOfMaps(t *testing.T) {
	input := strings.Join([]string{
		"- a: 1",
		"  b: 2",
		"- a: 3",
		"",
	}, "\n")
	assertTree(t,
		List{
			entries(e("a", Int(1)), e("b", Int(2))),
			entries(e("a", Int(3))),
		},
		parseDoc(t, input))
}

func TestParseListItemOnNextLine(t *testing.T) {
	input := strings.Join([]string{
		"-",
		"  a: 1",
		"- 2",
		"",
	}, "\n")
	assertTree(t,
		List{entries(e("a", Int(1))), Int(2)},
		parseDoc(t, input))
}

func TestParseMapValueOnNextLine(t *testing.T) {
	input := strings.Join([]string{
		"key:",
		"  - 1",
		"  - 2",
		"",
	}, "\n")
	assertTree(t, entries(e("key", List{Int(1), Int(2)})), parseDoc(t, input))
}

func TestParseCommentsAndBlanks(t *testing.T) {
	input := strings.Join([]string{
		"# leading comment",
		"",
		"a: 1",
		"# comment between keys",
		"",
		"b: 2",
		"",
	}, "\n")
	assertTree(t, entries(e("a", Int(1)), e("b", Int(2))), parseDoc(t, input))
}

func TestParseHexWithSeparators(t *testing.T) {
	assertTree(t, entries(e("v", Int(65535))), parseDoc(t, "# comment\n\nv: 0xFF_FF\n"))
}

func TestParseDuplicateKeyUpdates(t *testing.T) {
	assertTree(t, entries(e("a", Int(2))), parseDoc(t, "a: 1\na: 2\n"))
}

func TestParseNonStringKeys(t *testing.T) {
	input := strings.Join([]string{
		"1: one",
		"-2: minus two",
		"true: yes",
		"",
	}, "\n")
	assertTree(t,
		entries(
			e("1", String("one")),
			e("-2", String("minus two")),
			e("true", String("yes")),
		),
		parseDoc(t, input))
}

func TestParseQuotedKey(t *testing.T) {
	assertTree(t,
		entries(e("key with: colon", Int(1))),
		parseDoc(t, "\"key with: colon\": 1\n"))
}

func TestParseKeywordPrefixIsPlainKey(t *testing.T) {
	// reserved words only count when followed by a value terminator
	assertTree(t, entries(e("nullable", Int(1))), parseDoc(t, "nullable: 1\n"))
}

func TestParseEscapedString(t *testing.T) {
	assertTree(t, entries(e("k", String("aAb"))), parseDoc(t, `k: "a\u0041b"`+"\n"))
}

func TestParseMultilineString(t *testing.T) {
	input := strings.Join([]string{
		`k: "line1`,
		`    line2"`,
		"",
	}, "\n")
	assertTree(t, entries(e("k", String("line1 line2"))), parseDoc(t, input))
}

func TestParseMultilineStringEmptyTerminator(t *testing.T) {
	input := strings.Join([]string{
		`k: "line1`,
		`    line2`,
		`   "`,
		"",
	}, "\n")
	assertTree(t, entries(e("k", String("line1 line2"))), parseDoc(t, input))
}

func TestParseMultilineStringUnterminated(t *testing.T) {
	input := strings.Join([]string{
		`k: "line1`,
		`    line2`,
		"",
	}, "\n")
	perr := parseDocErr(t, input)
	assert.Equal(t, "String has no closing quote", perr.Message)
}

func TestParseLiteralBlock(t *testing.T) {
	assertTree(t, String("line1\nline2\n"), parseDoc(t, ":literal:\n  line1\n  line2\n"))
}

func TestParseLiteralBlockSingleLine(t *testing.T) {
	assertTree(t, String("only"), parseDoc(t, ":literal:\n  only\n"))
}

func TestParseLiteralKeepsInnerIndent(t *testing.T) {
	input := strings.Join([]string{
		"code: :literal:",
		"  if x:",
		"      y()",
		"",
	}, "\n")
	assertTree(t, entries(e("code", String("if x:\n    y()\n"))), parseDoc(t, input))
}

func TestParseRawBlock(t *testing.T) {
	input := strings.Join([]string{
		"r: :raw:",
		"  keep \\n as is",
		"  second",
		"",
	}, "\n")
	// raw strips the block indent only and keeps escapes verbatim
	assertTree(t,
		entries(e("r", String(" keep \\n as is\n second\n"))),
		parseDoc(t, input))
}

func TestParseFoldedBlock(t *testing.T) {
	input := strings.Join([]string{
		":folded:",
		"  one",
		"  two",
		"",
		"  three",
		"",
	}, "\n")
	assertTree(t, String("one two\nthree"), parseDoc(t, input))
}

func TestParseDatetimeConvspec(t *testing.T) {
	assertTree(t,
		entries(e("at", DateTime{Year: 2023, Month: 6, Day: 1, Hour: 12, Minute: 0, Second: 0})),
		parseDoc(t, "at: :datetime: 2023-06-01 12:00:00\n"))
}

func TestParseTimestampConvspec(t *testing.T) {
	assertTree(t,
		entries(e("ts", Timestamp{Seconds: 1700000000, Nanoseconds: 500000000})),
		parseDoc(t, "ts: :timestamp: 1700000000.500\n"))
}

func TestParseJSONConvspec(t *testing.T) {
	assertTree(t,
		entries(e("x", List{Int(1), Int(2), Int(3)})),
		parseDoc(t, ":json:\n  {\"x\": [1, 2, 3]}\n"))
}

func TestParseJSONConvspecSameLine(t *testing.T) {
	assertTree(t,
		entries(e("j", List{Int(1), Int(2)})),
		parseDoc(t, "j: :json: [1, 2]\n"))
}

func TestParseUnknownConvspecIsLiteral(t *testing.T) {
	// :nosuch: is not registered, so the block is a literal string
	assertTree(t, String(":nosuch: text"), parseDoc(t, ":nosuch: text\n"))
}

func TestParseCustomConversion(t *testing.T) {
	p := NewParser(NewLineSource(strings.NewReader("v: :upper: hello\n")), "")
	err := p.RegisterConversion("upper", func(p *Parser) (Value, error) {
		v, err := p.parseLiteralString()
		if err != nil {
			return nil, err
		}
		return String(strings.ToUpper(string(v.(String)))), nil
	})
	require.NoError(t, err)
	v, err := p.Parse()
	require.NoError(t, err)
	assertTree(t, entries(e("v", String("HELLO"))), v)
}

func TestRegisterConversionValidation(t *testing.T) {
	p := NewParser(NewLineSource(strings.NewReader("")), "")
	fn := func(p *Parser) (Value, error) { return Null{}, nil }
	assert.Error(t, p.RegisterConversion("", fn))
	assert.Error(t, p.RegisterConversion("has space", fn))
	assert.Error(t, p.RegisterConversion("1digit", fn))
	assert.Error(t, p.RegisterConversion("x", nil))
	assert.NoError(t, p.RegisterConversion("base64", fn))
	assert.NoError(t, p.RegisterConversion(" trimmed ", fn))
}

func TestParseErrors(t *testing.T) {
	test := func(input, message string, line, col int) func(*testing.T) {
		return func(t *testing.T) {
			perr := parseDocErr(t, input)
			assert.Equal(t, message, perr.Message)
			assert.Equal(t, line, perr.Pos.Line)
			assert.Equal(t, col, perr.Pos.Col)
		}
	}

	t.Run("bad number", test("bad: 0b\n", "Bad number", 1, 5))
	t.Run("list dedent", test("- 1\n  - 2\n", "Bad indentation of list item", 2, 2))
	t.Run("list column drift", test("- 1\n - 2\n", "Bad indentation of list item", 2, 1))
	t.Run("map column drift", test("a: 1\n b: 2\n", "Bad indentation of map key", 2, 1))
	t.Run("extra data", test("1\nextra\n", "Extra data after parsed value", 2, 0))
	t.Run("bad char after value", test("a: 1 x\n", "Bad character encountered", 1, 5))
	t.Run("junk after scalar value", test("a: 1\n   junk\nb: 2\n", "Bad indentation of map key", 2, 3))
	t.Run("empty map value", test("a:\n", "Empty block", 1, 0))
	t.Run("colon key", test("a: 1\n:b: 2\n", "Map key expected and it cannot start with colon", 2, 0))
	t.Run("list as key", test("a: 1\n- 2\n", "Map key expected and it cannot be a list", 2, 0))
	t.Run("not a key", test("a: 1\nbare\n", "Not a key", 2, 0))
	t.Run("bad list item", test("- 1\n-x\n", "Bad list item", 2, 0))
}

func TestParseEmptyInput(t *testing.T) {
	_, err := NewParser(NewLineSource(strings.NewReader("")), "").Parse()
	assert.ErrorIs(t, err, io.EOF)

	_, err = NewParser(NewLineSource(strings.NewReader("# only comments\n\n")), "").Parse()
	assert.ErrorIs(t, err, io.EOF)
}

func TestParseTrailingComments(t *testing.T) {
	assertTree(t, Int(1), parseDoc(t, "1\n# trailing\n# more\n"))
	assertTree(t, entries(e("a", Int(1))), parseDoc(t, "a: 1\n# trailing\n"))
}

func TestParseRecursionLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString(strings.Repeat(" ", i))
		b.WriteString("k:\n")
	}
	b.WriteString(strings.Repeat(" ", 120))
	b.WriteString("1\n")
	_, err := NewParser(NewLineSource(strings.NewReader(b.String())), "").Parse()
	var perr Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Too many nested blocks", perr.Message)
}

func TestParseErrorPosFile(t *testing.T) {
	perr := parseDocErr(t, "bad: 0b\n")
	assert.Equal(t, "test.amw", perr.Pos.File)
	assert.Equal(t, "test.amw:1:5: Bad number", perr.Error())
}

func TestParseBlankLineBetweenItems(t *testing.T) {
	assertTree(t, List{Int(1), Int(2)}, parseDoc(t, "- 1\n\n- 2\n"))
}

func TestParseValueEndAtKeyValueSeparator(t *testing.T) {
	// a scalar followed by a separator becomes the first key of a map
	assertTree(t, entries(e("42", String("answer"))), parseDoc(t, "42: answer\n"))
}

func TestParseLiteralStringValue(t *testing.T) {
	input := strings.Join([]string{
		"text:",
		"  first line",
		"  second line",
		"",
	}, "\n")
	assertTree(t,
		entries(e("text", String("first line\nsecond line\n"))),
		parseDoc(t, input))
}
