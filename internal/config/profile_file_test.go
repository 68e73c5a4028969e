// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"grimm.is/relayprofile/internal/typed"
)

const sampleProfile = "[Policies]\nHTTP = http, port = 8310, server-address = 127.0.0.1\n" +
	"[Rule]\nFINAL,HTTP\n"

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.conf")
	require.NoError(t, writeFile(path, sampleProfile))

	pf, err := Load(path)
	require.NoError(t, err)
	require.False(t, pf.HasChanges())

	pf.Profile.BasicSettings.LogLevel = "debug"
	require.True(t, pf.HasChanges())

	require.NoError(t, pf.Save())
	require.False(t, pf.HasChanges())

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", reloaded.Profile.BasicSettings.LogLevel)
}

func TestReloadDiscardsInMemoryChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.conf")
	require.NoError(t, writeFile(path, sampleProfile))

	pf, err := Load(path)
	require.NoError(t, err)

	pf.Profile.BasicSettings.LogLevel = "debug"
	require.NoError(t, pf.Reload())
	require.Equal(t, "info", pf.Profile.BasicSettings.LogLevel)
	require.False(t, pf.HasChanges())
}

func TestDiffReportsRemovedPolicyAsCritical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.conf")
	require.NoError(t, writeFile(path, sampleProfile))

	pf, err := Load(path)
	require.NoError(t, err)

	pf.Profile.Policies = removePolicy(pf.Profile.Policies, "HTTP")

	diff, err := pf.Diff()
	require.NoError(t, err)
	require.True(t, diff.HasChanges())
	require.Greater(t, diff.Summary.CriticalChanges, 0)
}

func removePolicy(policies []typed.ConnectionPolicy, name string) []typed.ConnectionPolicy {
	out := make([]typed.ConnectionPolicy, 0, len(policies))
	for _, p := range policies {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return out
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
