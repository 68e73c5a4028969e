// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tree implements the intermediate tagged-union tree (component D)
// that sits between the raw profile text (component E) and the strongly
// typed profile entities (component F). It never touches bytes directly and
// never drives the tokenizer.
package tree

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"grimm.is/relayprofile/internal/keyname"
)

// BigDecimal holds a number too wide for int64/uint64 in its exact textual
// form. It marshals as a bare JSON number literal (not a string) so a
// reader parsing with an arbitrary-precision decoder keeps full precision;
// readers using ordinary float64 JSON numbers will lose precision the same
// way they would for any other oversized literal.
type BigDecimal string

func (d BigDecimal) MarshalJSON() ([]byte, error) {
	return []byte(d), nil
}

func (d BigDecimal) String() string { return string(d) }

// Kind tags the variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is the recursive tagged union. Numbers are stored as their exact
// textual form (Number) so round-tripping never loses precision or a
// leading "+"/trailing zeros decided at serialization time; they are only
// converted to a native numeric type on demand, via Native().
type Value struct {
	kind Kind
	b    bool
	num  string
	s    string
	list []Value
	m    *Map
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a number's textual form verbatim.
func Number(text string) Value { return Value{kind: KindNumber, num: text} }

// NumberFromInt wraps a native integer as a Number.
func NumberFromInt(i int64) Value { return Number(strconv.FormatInt(i, 10)) }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List wraps a list of Values.
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

// ListOf wraps an existing slice without copying semantics beyond what the
// caller already owns.
func ListOf(items []Value) Value { return Value{kind: KindList, list: items} }

// MapValue wraps an ordered Map.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// StringList builds a List of Strings from a plain string slice — the
// common case for dns-servers/exceptions/hostnames-style values.
func StringList(items []string) Value {
	vals := make([]Value, len(items))
	for i, s := range items {
		vals[i] = String(s)
	}
	return List(vals...)
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; ok is false if v is not a Bool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// NumberText returns the exact textual form of a Number value.
func (v Value) NumberText() (string, bool) { return v.num, v.kind == KindNumber }

// Str returns the string payload; ok is false if v is not a String.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// List returns the element slice; ok is false if v is not a List.
func (v Value) List() ([]Value, bool) { return v.list, v.kind == KindList }

// Map returns the underlying ordered Map; ok is false if v is not a Map.
func (v Value) Map() (*Map, bool) { return v.m, v.kind == KindMap }

// StringsOrEmpty coerces a List-of-String Value to a []string, or returns
// nil for anything else (including Null). Used by the typed mapper for the
// basic-settings list fields.
func (v Value) StringsOrEmpty() []string {
	items, ok := v.List()
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.Str(); ok {
			out = append(out, s)
		}
	}
	return out
}

// BoolOr returns the boolean payload or def if v is not a Bool.
func (v Value) BoolOr(def bool) bool {
	if b, ok := v.Bool(); ok {
		return b
	}
	return def
}

// StrOr returns the string payload or def if v is not a String.
func (v Value) StrOr(def string) string {
	if s, ok := v.Str(); ok {
		return s
	}
	return def
}

// Int64Or converts a Number value to int64, or returns def otherwise.
func (v Value) Int64Or(def int64) int64 {
	text, ok := v.NumberText()
	if !ok {
		return def
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i
	}
	return def
}

// Map is an insertion-ordered string-keyed map of Values.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty ordered Map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set inserts or overwrites key. Overwriting preserves the key's original
// position: repeated keys overwrite in place rather than moving to the end.
func (m *Map) Set(key string, v Value) {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (m *Map) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Delete removes key, if present.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Native converts v to a plain Go value suitable for JSON marshaling or for
// the typed mapper to walk: Null -> nil, Bool -> bool, String -> string,
// List -> []any, Map -> an order-preserving map whose keys have gone
// through keyname.KebabToCamel (component H) and whose values have been
// converted recursively. Number converts through a numeric ladder: signed
// 64-bit if it fits in <=19 digits, else unsigned 64-bit if it fits in
// <=20 digits, else a BigDecimal preserving the exact text if the value
// has more than 17 significant digits and parses as a number, else
// float64; anything that fails every rung converts to 0.0.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindNumber:
		return nativeNumber(v.num)
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := NewNativeMap()
		for _, k := range v.m.Keys() {
			val, _ := v.m.Get(k)
			out.Set(keyname.KebabToCamel(k), val.Native())
		}
		return out
	default:
		return nil
	}
}

// NativeMap is an insertion-ordered map of native (any-typed) values,
// mirroring Map but for the post-conversion side of Native().
type NativeMap struct {
	keys []string
	vals map[string]any
}

func NewNativeMap() *NativeMap {
	return &NativeMap{vals: make(map[string]any)}
}

func (m *NativeMap) Set(key string, v any) {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *NativeMap) Get(key string) (any, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *NativeMap) Keys() []string { return m.keys }

// MarshalJSON renders m as a JSON object, preserving key insertion order —
// encoding/json's map support would otherwise sort keys alphabetically,
// which loses the ordering the rest of the engine works hard to keep.
func (m *NativeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func nativeNumber(text string) any {
	if text == "" {
		return 0.0
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil && fitsDigits(text, 19) {
		return i
	}
	if u, err := strconv.ParseUint(trimSign(text), 10, 64); err == nil && fitsDigits(text, 20) {
		return u
	}
	if digitCount(text) > 17 && looksLikeNumber(text) {
		return BigDecimal(text)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return 0.0
}

func trimSign(s string) string {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		return s[1:]
	}
	return s
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func fitsDigits(s string, max int) bool {
	return digitCount(s) <= max
}

// looksLikeNumber reports whether s matches the JSON number grammar, so it
// is safe to emit verbatim as a bare numeric literal.
func looksLikeNumber(s string) bool {
	i := 0
	n := len(s)
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return false
	}
	if i < n && s[i] == '.' {
		i++
		fracStart := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == fracStart {
			return false
		}
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < n && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expStart := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == expStart {
			return false
		}
	}
	return i == n
}

// listKeys are the raw text keys whose value is always a comma-separated
// list of strings, regardless of content.
var listKeys = map[string]bool{
	"dns-servers": true,
	"exceptions":  true,
	"hostnames":   true,
}

// CoerceByKey converts a raw value string into a Value the way the
// profile serializer does it for a given key: dns-servers, exceptions and
// hostnames always become a list of trimmed strings; a key ending in
// "port" becomes a Number; everything else goes through CoerceBool.
func CoerceByKey(key, raw string) Value {
	if listKeys[key] {
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return StringList(out)
	}
	if strings.HasSuffix(key, "port") {
		return Number(raw)
	}
	return CoerceBool(raw)
}

// CoerceBool applies the raw-value boolean coercion: "true"/"false" become
// Bool, anything else becomes String.
func CoerceBool(raw string) Value {
	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	default:
		return String(raw)
	}
}
