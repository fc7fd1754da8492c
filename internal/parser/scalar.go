package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pwall567/kjson-yaml/pkg/node"
)

// Default tag URIs for the YAML 1.2 core schema.
const (
	tagPrefix = "tag:yaml.org,2002:"
	nullTag   = tagPrefix + "null"
	boolTag   = tagPrefix + "bool"
	intTag    = tagPrefix + "int"
	floatTag  = tagPrefix + "float"
	strTag    = tagPrefix + "str"
	seqTag    = tagPrefix + "seq"
	mapTag    = tagPrefix + "map"
)

// floatSpecials are the textual forms of NaN and the infinities. They are
// kept as strings in the value tree, but the node is tagged as a float so
// consumers can recognize them.
var floatSpecials = map[string]bool{
	".nan": true, ".NaN": true, ".NAN": true,
	".inf": true, ".Inf": true, ".INF": true,
	"+.inf": true, "+.Inf": true, "+.INF": true,
	"-.inf": true, "-.Inf": true, "-.INF": true,
}

// classifyScalar maps the text of a plain scalar to a typed value, taking
// the resolved tag (empty when none) and the YAML minor version into
// account. When the text is one of the float specials and no tag was given,
// the returned implied tag is the float tag; it is empty otherwise.
func classifyScalar(text, tag string, minorVersion int) (node.Node, string) {
	if tag == strTag {
		return node.String(text), ""
	}
	if tag == floatTag && isIntegerShaped(text) {
		if d, err := node.DecimalFromString(text); err == nil {
			return d, ""
		}
	}
	if tag == intTag && !isIntegerShaped(text) && isDecimalShaped(text) {
		if d, err := decimal.NewFromString(trimBareDot(text)); err == nil {
			t := d.Truncate(0)
			if d.Equal(t) {
				i := t.IntPart()
				if decimal.NewFromInt(i).Equal(t) {
					return integerNode(i), ""
				}
				return node.NewDecimal(t), ""
			}
		}
	}
	if minorVersion < 2 {
		switch text {
		case "yes", "Yes", "YES", "on", "On", "ON":
			return node.Bool(true), ""
		case "no", "No", "NO", "off", "Off", "OFF":
			return node.Bool(false), ""
		}
		if len(text) > 1 && text[0] == '0' && allOctal(text[1:]) {
			if v, err := strconv.ParseInt(text[1:], 8, 64); err == nil {
				return integerNode(v), ""
			}
		}
	}
	switch text {
	case "", "null", "Null", "NULL", "~":
		return nil, ""
	case "true", "True", "TRUE":
		return node.Bool(true), ""
	case "false", "False", "FALSE":
		return node.Bool(false), ""
	}
	if strings.HasPrefix(text, "0o") && len(text) > 2 && allOctal(text[2:]) {
		if v, err := strconv.ParseInt(text[2:], 8, 64); err == nil {
			return integerNode(v), ""
		}
	}
	if strings.HasPrefix(text, "0x") && len(text) > 2 && allHex(text[2:]) {
		if v, err := strconv.ParseInt(text[2:], 16, 64); err == nil {
			return integerNode(v), ""
		}
	}
	if isIntegerShaped(text) {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return integerNode(v), ""
		}
		// Too wide for 64 bits: keep full precision as a decimal.
		if d, err := node.DecimalFromString(text); err == nil {
			return d, ""
		}
	}
	if isDecimalShaped(text) {
		if d, err := node.DecimalFromString(trimBareDot(text)); err == nil {
			return d, ""
		}
	}
	if tag == "" && floatSpecials[text] {
		return node.String(text), floatTag
	}
	return node.String(text), ""
}

// integerNode narrows a 64-bit value to the 32-bit kind when it fits.
func integerNode(v int64) node.Node {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return node.Int(int32(v))
	}
	return node.Long(v)
}

// isIntegerShaped reports an optional sign followed by one or more decimal
// digits.
func isIntegerShaped(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// isDecimalShaped reports an optional sign, one or more digits, an optional
// fractional part, and an optional exponent.
func isDecimalShaped(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start = i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

// trimBareDot drops a '.' that has no following digits ("5." or "5.e3"),
// which the decimal parser rejects.
func trimBareDot(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if i+1 == len(s) || s[i+1] == 'e' || s[i+1] == 'E' {
			return s[:i] + s[i+1:]
		}
	}
	return s
}

func allOctal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		if _, ok := hexDigit(s[i]); !ok {
			return false
		}
	}
	return true
}
