package amwparser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppendJSON appends the canonical JSON form of v to dst. Maps keep their
// insertion order; date/times emit as strings and timestamps as decimal
// seconds, so the output of a pure-JSON tree re-parses to an equal tree.
func AppendJSON(dst []byte, v Value) []byte {
	switch t := v.(type) {
	case nil, Null:
		return append(dst, "null"...)
	case Bool:
		if t {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case Int:
		return strconv.AppendInt(dst, int64(t), 10)
	case Uint:
		return strconv.AppendUint(dst, uint64(t), 10)
	case Float:
		start := len(dst)
		dst = strconv.AppendFloat(dst, float64(t), 'g', -1, 64)
		// an integral float gets ".0" so that it re-parses as a float
		if !bytes.ContainsAny(dst[start:], ".eIN") {
			dst = append(dst, ".0"...)
		}
		return dst
	case String:
		return appendJSONString(dst, string(t))
	case DateTime:
		return appendJSONString(dst, t.String())
	case Timestamp:
		return append(dst, t.String()...)
	case List:
		dst = append(dst, '[')
		for i, item := range t {
			if i > 0 {
				dst = append(dst, ',', ' ')
			}
			dst = AppendJSON(dst, item)
		}
		return append(dst, ']')
	case *Map:
		dst = append(dst, '{')
		for i, e := range t.Entries {
			if i > 0 {
				dst = append(dst, ',', ' ')
			}
			dst = appendJSONString(dst, e.Key)
			dst = append(dst, ':', ' ')
			dst = AppendJSON(dst, e.Value)
		}
		return append(dst, '}')
	}
	panic(fmt.Sprintf("unknown value type %T", v))
}

// EncodeJSON writes the canonical JSON form of v to w.
func EncodeJSON(w io.Writer, v Value) error {
	_, err := w.Write(AppendJSON(nil, v))
	return err
}

func appendJSONString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, fmt.Sprintf("\\u%04x", c)...)
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

// YAMLNode converts v to a yaml.Node tree, preserving map order.
func YAMLNode(v Value) *yaml.Node {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	switch t := v.(type) {
	case nil, Null:
		return scalar("!!null", "null")
	case Bool:
		if t {
			return scalar("!!bool", "true")
		}
		return scalar("!!bool", "false")
	case Int:
		return scalar("!!int", strconv.FormatInt(int64(t), 10))
	case Uint:
		return scalar("!!int", strconv.FormatUint(uint64(t), 10))
	case Float:
		return scalar("!!float", strconv.FormatFloat(float64(t), 'g', -1, 64))
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: string(t)}
	case DateTime:
		return scalar("!!timestamp", t.String())
	case Timestamp:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: t.String()}
	case List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			n.Content = append(n.Content, YAMLNode(item))
		}
		return n
	case *Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range t.Entries {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: e.Key},
				YAMLNode(e.Value))
		}
		return n
	}
	panic(fmt.Sprintf("unknown value type %T", v))
}
