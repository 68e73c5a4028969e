// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	profileerrors "grimm.is/relayprofile/internal/errors"
)

func TestParseBasicRule(t *testing.T) {
	r, err := Default.Parse("DOMAIN-SUFFIX,example.com,PROXY")
	require.NoError(t, err)
	require.Equal(t, Rule{Tag: TagDomainSuffix, Expression: "example.com", Policy: "PROXY"}, r)
}

func TestParseFinalHasNoExpression(t *testing.T) {
	r, err := Default.Parse("FINAL,DIRECT")
	require.NoError(t, err)
	require.Equal(t, Rule{Tag: TagFinal, Policy: "DIRECT"}, r)
}

func TestParseFinalMissingPolicyFails(t *testing.T) {
	_, err := Default.Parse("FINAL,")
	require.Error(t, err)
	kind, ok := profileerrors.ProfileErrorKind(err)
	require.True(t, ok)
	require.Equal(t, "RuleFieldMissing", kind)
}

func TestParseUnknownTagFails(t *testing.T) {
	_, err := Default.Parse("NOT-A-TAG,example.com,DIRECT")
	require.Error(t, err)
	kind, _ := profileerrors.ProfileErrorKind(err)
	require.Equal(t, "UnsupportedRule", kind)
}

func TestParseDisabledRuleWithComment(t *testing.T) {
	r, err := Default.Parse("# DOMAIN,example.com,DIRECT // note")
	require.NoError(t, err)
	require.Equal(t, Rule{
		Tag: TagDomain, Expression: "example.com", Policy: "DIRECT",
		Disabled: true, Comment: "note",
	}, r)
}

func TestFormatRoundTrip(t *testing.T) {
	cases := []string{
		"DOMAIN,example.com,PROXY",
		"DOMAIN-SUFFIX,example.com,DIRECT",
		"FINAL,DIRECT",
		"# DOMAIN,example.com,DIRECT // note",
		"GEOIP,US,REJECT",
	}
	for _, s := range cases {
		r, err := Default.Parse(s)
		require.NoError(t, err)
		require.Equal(t, s, CanonicalFormat(r), "round trip for %s", s)
	}
}

func TestParseAsDetectsTagMismatch(t *testing.T) {
	_, err := Default.ParseAs(TagDomainSuffix, "DOMAIN,example.com,DIRECT")
	require.Error(t, err)
	kind, _ := profileerrors.ProfileErrorKind(err)
	require.Equal(t, "FailedToParseAs", kind)
}

func TestFormatStyleSubsets(t *testing.T) {
	r := Rule{Tag: TagDomain, Expression: "example.com", Policy: "DIRECT", Comment: "x"}
	require.Equal(t, "DOMAIN", Format(r, FormatStyle{Tag: true}))
	require.Equal(t, "DIRECT", Format(r, FormatStyle{Policy: true}))
	require.Equal(t, "DOMAIN,DIRECT", Format(r, FormatStyle{Tag: true, Policy: true}))
}

func TestExternalResourceFlagOnRegisteredKinds(t *testing.T) {
	k, ok := Default.Lookup(TagDomainSet)
	require.True(t, ok)
	require.True(t, k.HasExternalResource)

	k, ok = Default.Lookup(TagDomain)
	require.True(t, ok)
	require.False(t, k.HasExternalResource)
}

func TestRegistrationIsIdempotentLastWriterWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Kind{Label: "X", MinFields: 1})
	reg.Register(Kind{Label: "X", MinFields: 2})
	k, ok := reg.Lookup("X")
	require.True(t, ok)
	require.Equal(t, 2, k.MinFields)
}

func TestIsRegisteredTag(t *testing.T) {
	require.True(t, IsRegisteredTag("DOMAIN,example.com,DIRECT"))
	require.True(t, IsRegisteredTag("# FINAL,DIRECT"))
	require.False(t, IsRegisteredTag("NOT-A-TAG,x,y"))
}
