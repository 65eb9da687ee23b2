package types

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Type is the semantic type of a StoryScript value. A variable's Type is fixed at
// declaration.
type Type int

const (
	Invalid Type = iota
	Boolean
	Integer
	Float
	String
	Dynamic
	List
	Dictionary
	Tuple
)

var typeNames = map[Type]string{
	Invalid:    "Invalid",
	Boolean:    "Boolean",
	Integer:    "Integer",
	Float:      "Float",
	String:     "String",
	Dynamic:    "Dynamic",
	List:       "List",
	Dictionary: "Dictionary",
	Tuple:      "Tuple",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// IsComposite reports whether t is one of the container types that have no
// allocation strategy.
func (t Type) IsComposite() bool {
	return t == List || t == Dictionary || t == Tuple
}

// IsBuffer reports whether values of t live in a byte buffer with a tracked capacity.
func (t Type) IsBuffer() bool {
	return t == String || t == Dynamic
}

var keywordTypes = map[string]Type{
	"int":        Integer,
	"bool":       Boolean,
	"float":      Float,
	"string":     String,
	"dynamic":    Dynamic,
	"list":       List,
	"dictionary": Dictionary,
	"tuple":      Tuple,
}

// KeywordToType maps a declaration keyword to its Type. The modifiers var and const
// have no fixed type and return false.
func KeywordToType(keyword string) (Type, bool) {
	t, ok := keywordTypes[keyword]
	return t, ok
}

// IsInferred reports whether keyword takes its type from the initializer.
func IsInferred(keyword string) bool {
	return keyword == "var" || keyword == "const"
}

// CName returns the C spelling used in declarations of t.
func CName(t Type) string {
	switch t {
	case Boolean:
		return "bool"
	case Integer:
		return "int"
	case Float:
		return "float"
	case String:
		return "char"
	case Dynamic:
		return "void*"
	}
	return ""
}

var (
	integerLiteral = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatLiteral   = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?[fF]?$`)
	dynamicLiteral = regexp.MustCompile(`^new\s+Dynamic\s*\((.*)\)$`)
)

// ClassifyLiteral infers the Type of a literal from its text. Names are not
// literals; the resolver types variables from the symbol table first.
func ClassifyLiteral(text string) Type {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return Invalid
	case IsQuoted(text):
		return String
	case dynamicLiteral.MatchString(text):
		return Dynamic
	case text == "true" || text == "false":
		return Boolean
	case integerLiteral.MatchString(text):
		return Integer
	case floatLiteral.MatchString(text):
		return Float
	}
	return Invalid
}

// IsQuoted reports whether text is a complete double-quoted string literal.
func IsQuoted(text string) bool {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return false
	}
	// the closing quote must not be escaped
	backslashes := 0
	for i := len(text) - 2; i > 0 && text[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 0
}

// StringContent returns the unescaped content of a quoted literal.
func StringContent(literal string) string {
	if !IsQuoted(literal) {
		return Unescape(literal)
	}
	return Unescape(literal[1 : len(literal)-1])
}

// DynamicPayload extracts the inner value of a `new Dynamic(...)` literal.
func DynamicPayload(text string) (string, bool) {
	m := dynamicLiteral.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ParseInteger parses an integer literal of any magnitude.
func ParseInteger(text string) (*big.Int, bool) {
	if !integerLiteral.MatchString(text) {
		return nil, false
	}
	return new(big.Int).SetString(strings.TrimPrefix(text, "+"), 10)
}

// ValidateName reports whether name can be used as an identifier.
func ValidateName(name string) bool {
	if name == "" {
		return false
	}
	return name[0] < '0' || name[0] > '9'
}

var escapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

// Unescape resolves backslash escape sequences. Unknown sequences are kept verbatim.
func Unescape(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i == len(text)-1 {
			b.WriteByte(c)
			continue
		}
		if r, ok := escapes[text[i+1]]; ok {
			b.WriteByte(r)
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// QuoteC renders content as a C string literal.
func QuoteC(content string) string {
	var b strings.Builder
	b.Grow(len(content) + 2)
	b.WriteByte('"')
	for i := 0; i < len(content); i++ {
		switch c := content[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\000`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
