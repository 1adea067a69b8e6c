package amwparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAppendJSON(t *testing.T) {
	test := func(v Value, expected string) func(*testing.T) {
		return func(t *testing.T) {
			assert.Equal(t, expected, string(AppendJSON(nil, v)))
		}
	}
	t.Run("", test(Null{}, `null`))
	t.Run("", test(Bool(true), `true`))
	t.Run("", test(Int(-42), `-42`))
	t.Run("", test(Uint(18446744073709551615), `18446744073709551615`))
	t.Run("", test(Float(2.5), `2.5`))
	t.Run("", test(String("a\"b\nc"), `"a\"b\nc"`))
	t.Run("", test(String("ctrl\x01"), "\"ctrl\\u0001\""))
	t.Run("", test(List{Int(1), String("x")}, `[1, "x"]`))
	t.Run("", test(entries(e("a", Int(1)), e("b", Null{})), `{"a": 1, "b": null}`))
	t.Run("", test(Timestamp{Seconds: 1700000000, Nanoseconds: 500000000}, `1700000000.5`))
	t.Run("", test(DateTime{Year: 2023, Month: 6, Day: 1}, `"2023-06-01T00:00:00"`))
}

// emitting a pure-JSON tree and parsing it back yields an equal tree
func TestJSONRoundTrip(t *testing.T) {
	docs := []string{
		`{"x": [1, 2, 3], "b": {"y": null, "z": [true, false]}}`,
		`[-1, 2.5, "s\n"]`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			first := parseJSONDoc(t, doc)
			emitted := string(AppendJSON(nil, first))
			second := parseJSONDoc(t, emitted)
			assertTree(t, first, second)
		})
	}
}

// an AMW document emitted as JSON re-parses to the same tree
func TestAMWCanonicalEmission(t *testing.T) {
	input := strings.Join([]string{
		"name: sample",
		"count: 3",
		"tags:",
		"  - a",
		"  - b",
		"",
	}, "\n")
	first := parseDoc(t, input)
	second := parseJSONDoc(t, string(AppendJSON(nil, first)))
	assertTree(t, first, second)
}

func TestYAMLNode(t *testing.T) {
	v := entries(
		e("b", Int(2)),
		e("a", Int(1)),
		e("list", List{String("x"), Null{}}),
	)
	node := YAMLNode(v)

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	require.NoError(t, enc.Encode(node))
	require.NoError(t, enc.Close())

	// insertion order survives the yaml encoding
	out := buf.String()
	assert.Less(t, strings.Index(out, "b: 2"), strings.Index(out, "a: 1"))
	assert.Contains(t, out, "list:")
	assert.Contains(t, out, "- x")
	assert.Contains(t, out, "- null")
}
