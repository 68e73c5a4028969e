// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package typed

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"grimm.is/relayprofile/internal/rules"
)

func TestDecodeProfileFillsDefaultsAndPrependsBuiltins(t *testing.T) {
	input := "[Policies]\nPROXY = http, port = 8310, server-address = 127.0.0.1\n" +
		"[Policy Group]\nAuto = select, policies = PROXY, DIRECT\n" +
		"[Rule]\nDOMAIN-SUFFIX,example.com,PROXY\nFINAL,DIRECT\n"

	p, err := DecodeProfile([]byte(input))
	require.NoError(t, err)

	require.Equal(t, "info", p.BasicSettings.LogLevel)

	names := make([]string, len(p.Policies))
	for i, pol := range p.Policies {
		names[i] = pol.Name
	}
	require.Equal(t, []string{"DIRECT", "REJECT", "REJECT-TINYGIF", "PROXY"}, names)

	require.Equal(t, PolicyProxy, p.Policies[3].Type)
	require.Equal(t, "127.0.0.1", p.Policies[3].Proxy.ServerAddress)
	require.EqualValues(t, 8310, p.Policies[3].Proxy.Port)
	require.Equal(t, DefaultAlgorithm, p.Policies[3].Proxy.Algorithm)

	require.Len(t, p.Rules, 2)
	require.Equal(t, rules.TagDomainSuffix, p.Rules[0].Tag)
	require.Equal(t, rules.TagFinal, p.Rules[1].Tag)
	require.Nil(t, p.Rules[0].Resource)
}

func TestDecodeProfileValidatesRuleSetExpressionIsAURL(t *testing.T) {
	input := "[Rule]\nRULE-SET,not a url,DIRECT\n"
	_, err := DecodeProfile([]byte(input))
	require.Error(t, err)
}

func TestDecodeProfileAcceptsWellFormedRuleSetURL(t *testing.T) {
	input := "[Rule]\nRULE-SET,https://example.com/list.txt,DIRECT\n"
	p, err := DecodeProfile([]byte(input))
	require.NoError(t, err)
	require.Len(t, p.Rules, 1)
	require.NotNil(t, p.Rules[0].Resource)
	require.False(t, p.Rules[0].Resource.Loaded())
}

func TestDecodeProfileRejectsInvalidDomainExpression(t *testing.T) {
	input := "[Rule]\nDOMAIN,not a domain at all,DIRECT\n"
	_, err := DecodeProfile([]byte(input))
	require.Error(t, err)
}

func TestEncodeProfileOmitsDefaultProxyFields(t *testing.T) {
	p := &Profile{
		BasicSettings: DefaultBasicSettings(),
		Policies: []ConnectionPolicy{
			{Name: "DIRECT", Type: PolicyDirect},
			{Name: "PROXY", Type: PolicyProxy, Proxy: &Proxy{
				ServerAddress: "10.0.0.1",
				Port:          443,
				Protocol:      "http",
				Algorithm:     DefaultAlgorithm,
			}},
		},
		Rules: []Rule{{Tag: rules.TagFinal, Policy: "PROXY"}},
	}

	out := string(EncodeProfile(p))
	require.Contains(t, out, "PROXY = http, port = 443, server-address = 10.0.0.1")
	require.NotContains(t, out, "algorithm")
}

func TestEncodeProfileRoundTripsThroughDecode(t *testing.T) {
	input := "[Policies]\nHTTP = http, port = 8310, server-address = 127.0.0.1\n" +
		"[Policy Group]\nAuto = select, policies = HTTP, DIRECT\n" +
		"[Rule]\nFINAL,Auto\n"

	p, err := DecodeProfile([]byte(input))
	require.NoError(t, err)

	p2, err := DecodeProfile(EncodeProfile(p))
	require.NoError(t, err)
	require.Equal(t, p, p2)
}

func TestResourceHolderLoadsOnceAndCaches(t *testing.T) {
	h := NewResourceHolder()
	calls := 0
	fetcher := fakeFetcher{fn: func() ([]string, error) {
		calls++
		return []string{"example.com"}, nil
	}}

	entries := h.Entries(context.Background(), fetcher, "https://example.com/list.txt")
	require.Equal(t, []string{"example.com"}, entries)
	require.True(t, h.Loaded())

	entries = h.Entries(context.Background(), fetcher, "https://example.com/list.txt")
	require.Equal(t, []string{"example.com"}, entries)
	require.Equal(t, 1, calls)
}

func TestResourceHolderFailedLoadLeavesEmpty(t *testing.T) {
	h := NewResourceHolder()
	fetcher := fakeFetcher{fn: func() ([]string, error) {
		return nil, errors.New("boom")
	}}

	entries := h.Entries(context.Background(), fetcher, "https://example.com/list.txt")
	require.Nil(t, entries)
	require.True(t, h.Loaded())
}

func TestResourceHolderResetReloads(t *testing.T) {
	h := NewResourceHolder()
	calls := 0
	fetcher := fakeFetcher{fn: func() ([]string, error) {
		calls++
		return []string{"a"}, nil
	}}

	h.Entries(context.Background(), fetcher, "u")
	h.Reset()
	h.Entries(context.Background(), fetcher, "u")
	require.Equal(t, 2, calls)
}

func TestValidatePKCS12ShapeRejectsGarbageBase64(t *testing.T) {
	err := decodeMitMWithBlob(t, "not-base64!!!")
	require.Error(t, err)
}

func TestValidatePKCS12ShapeRejectsNonPKCS12Payload(t *testing.T) {
	err := decodeMitMWithBlob(t, base64.StdEncoding.EncodeToString([]byte("not a pkcs12 bundle")))
	require.Error(t, err)
}

func decodeMitMWithBlob(t *testing.T, blob string) error {
	t.Helper()
	var m MitMSettings
	m.PKCS12 = blob
	return validatePKCS12Shape(m.PKCS12, "")
}

type fakeFetcher struct {
	fn func() ([]string, error)
}

func (f fakeFetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	return f.fn()
}
