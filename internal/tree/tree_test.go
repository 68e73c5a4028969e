// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarAccessors(t *testing.T) {
	require.True(t, Null().IsNull())
	b, ok := Bool(true).Bool()
	require.True(t, ok)
	require.True(t, b)

	s, ok := String("DIRECT").Str()
	require.True(t, ok)
	require.Equal(t, "DIRECT", s)

	text, ok := Number("443").NumberText()
	require.True(t, ok)
	require.Equal(t, "443", text)
}

func TestMapPreservesInsertionOrderAndOverwrite(t *testing.T) {
	m := NewMap()
	m.Set("b", String("2"))
	m.Set("a", String("1"))
	m.Set("b", String("two"))
	require.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	require.True(t, ok)
	s, _ := v.Str()
	require.Equal(t, "two", s)
}

func TestMapDelete(t *testing.T) {
	m := NewMap()
	m.Set("x", Bool(true))
	m.Set("y", Bool(false))
	m.Delete("x")
	require.Equal(t, []string{"y"}, m.Keys())
	_, ok := m.Get("x")
	require.False(t, ok)
}

func TestStringsOrEmpty(t *testing.T) {
	v := StringList([]string{"8.8.8.8", "1.1.1.1"})
	require.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, v.StringsOrEmpty())
	require.Nil(t, String("nope").StringsOrEmpty())
}

func TestNativeNumberLadder(t *testing.T) {
	require.Equal(t, int64(443), Number("443").Native())
	require.Equal(t, int64(-1), Number("-1").Native())

	// 20-digit value overflows int64 but fits uint64.
	u := Number("18446744073709551615").Native()
	require.Equal(t, uint64(18446744073709551615), u)

	// More than 17 significant digits and not representable as int64/uint64
	// falls to the arbitrary-precision decimal rung.
	dec, ok := Number("123456789012345678901234567890").Native().(BigDecimal)
	require.True(t, ok)
	require.Equal(t, BigDecimal("123456789012345678901234567890"), dec)

	require.Equal(t, 0.0, Number("").Native())
	require.Equal(t, 0.0, Number("not-a-number").Native())
}

func TestNativeMapUsesCamelKeysAndRecurses(t *testing.T) {
	inner := NewMap()
	inner.Set("dns-servers", StringList([]string{"8.8.8.8"}))
	inner.Set("http-listen-port", Number("6152"))

	native := MapValue(inner).Native()
	nm, ok := native.(*NativeMap)
	require.True(t, ok)
	require.Equal(t, []string{"dnsServers", "httpListenPort"}, nm.Keys())

	port, ok := nm.Get("httpListenPort")
	require.True(t, ok)
	require.Equal(t, int64(6152), port)
}

func TestCoerceByKey(t *testing.T) {
	v := CoerceByKey("dns-servers", "223.5.5.5, 114.114.114.114, system")
	require.Equal(t, []string{"223.5.5.5", "114.114.114.114", "system"}, v.StringsOrEmpty())

	v = CoerceByKey("http-listen-port", "6152")
	text, ok := v.NumberText()
	require.True(t, ok)
	require.Equal(t, "6152", text)

	v = CoerceByKey("exclude-simple-hostnames", "true")
	b, ok := v.Bool()
	require.True(t, ok)
	require.True(t, b)

	v = CoerceByKey("server-address", "127.0.0.1")
	s, ok := v.Str()
	require.True(t, ok)
	require.Equal(t, "127.0.0.1", s)
}

func TestNativeMapMarshalsPreservingKeyOrder(t *testing.T) {
	m := NewMap()
	m.Set("b-key", String("2"))
	m.Set("a-key", String("1"))
	native := MapValue(m).Native()
	data, err := json.Marshal(native)
	require.NoError(t, err)
	require.Equal(t, `{"bKey":"2","aKey":"1"}`, string(data))
}

func TestNativeListRecurses(t *testing.T) {
	v := List(Number("1"), Number("2"), Null())
	out, ok := v.Native().([]any)
	require.True(t, ok)
	require.Equal(t, []any{int64(1), int64(2), nil}, out)
}
