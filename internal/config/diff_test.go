// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"grimm.is/relayprofile/internal/typed"
)

func TestDiffProfilesNoChanges(t *testing.T) {
	p := baseProfile()
	diff := DiffProfiles(p, p)
	require.False(t, diff.HasChanges())
}

func TestDiffProfilesDetectsModifiedField(t *testing.T) {
	before := baseProfile()
	after := baseProfile()
	after.BasicSettings.LogLevel = "debug"

	diff := DiffProfiles(before, after)
	require.True(t, diff.HasChanges())
	require.Len(t, diff.Modified, 1)
	require.Equal(t, "info", diff.Modified[0].Old)
	require.Equal(t, "debug", diff.Modified[0].New)
}

func TestDiffProfilesFlagsPasswordChangeAsWarning(t *testing.T) {
	before := baseProfile()
	after := baseProfile()
	after.Policies[0].Proxy.Password = "changed"

	diff := DiffProfiles(before, after)
	require.True(t, diff.HasChanges())
	require.Equal(t, "warning", diff.Modified[0].Severity)
}

func baseProfile() *typed.Profile {
	return &typed.Profile{
		BasicSettings: typed.DefaultBasicSettings(),
		Policies: []typed.ConnectionPolicy{
			{Name: "PROXY", Type: typed.PolicyProxy, Proxy: &typed.Proxy{
				ServerAddress: "10.0.0.1",
				Port:          443,
				Protocol:      "http",
				Password:      "secret",
				Algorithm:     typed.DefaultAlgorithm,
			}},
		},
	}
}
