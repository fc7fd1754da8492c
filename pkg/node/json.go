package node

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON renders a value as compact JSON. Mapping entries appear in
// insertion order. This is the canonical textual form used when a non-string
// mapping key has to be coerced to a string.
func ToJSON(n Node) string {
	var b strings.Builder
	appendJSON(&b, n)
	return b.String()
}

func appendJSON(b *strings.Builder, n Node) {
	if n == nil {
		b.WriteString("null")
		return
	}
	switch v := n.(type) {
	case Bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Decimal:
		b.WriteString(v.String())
	case String:
		appendJSONString(b, string(v))
	case *Seq:
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}
			appendJSON(b, item)
		}
		b.WriteByte(']')
	case *Map:
		b.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			appendJSONString(b, key)
			b.WriteByte(':')
			appendJSON(b, v.values[key])
		}
		b.WriteByte('}')
	}
}

func appendJSONString(b *strings.Builder, s string) {
	data, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string cannot fail; fall back to a bare quote pair.
		b.WriteString(`""`)
		return
	}
	b.Write(data)
}
