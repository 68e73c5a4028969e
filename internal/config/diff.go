// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"grimm.is/relayprofile/internal/typed"
)

// ChangeType is the kind of change one field underwent between two profile
// versions.
type ChangeType string

const (
	Added    ChangeType = "added"
	Modified ChangeType = "modified"
	Removed  ChangeType = "removed"
)

// Change is a single field-level difference, addressed by a dotted path
// built from the profile's JSON field names (e.g. "Policies[PROXY].Proxy.Port").
type Change struct {
	Path     string
	Old      any
	New      any
	Type     ChangeType
	Section  string
	Severity string // "critical", "warning", "info"
}

// Summary aggregates a Diff's changes for a quick at-a-glance report.
type Summary struct {
	TotalChanges     int
	CriticalChanges  int
	WarningChanges   int
	AffectedSections []string
}

// Diff is a structured diff between two profile versions.
type Diff struct {
	Added    []Change
	Modified []Change
	Removed  []Change
	Summary  Summary
}

// HasChanges reports whether d carries any recorded change.
func (d *Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Modified) > 0 || len(d.Removed) > 0
}

// DiffProfiles performs a structured diff between oldProfile and
// newProfile, comparing them field-by-field through their JSON
// representation (marshal both sides to map[string]any, then walk both
// maps together) so the diff works uniformly across every nested struct
// and slice without hand-written per-field comparisons.
func DiffProfiles(oldProfile, newProfile *typed.Profile) *Diff {
	d := &Diff{}
	compareValues(toMap(oldProfile), toMap(newProfile), "", d)
	d.calculateSummary()
	return d
}

func toMap(p *typed.Profile) map[string]any {
	data, _ := json.Marshal(p)
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return out
}

func compareValues(old, new any, path string, d *Diff) {
	oldMap, oldIsMap := old.(map[string]any)
	newMap, newIsMap := new.(map[string]any)
	if oldIsMap && newIsMap {
		compareMaps(oldMap, newMap, path, d)
		return
	}

	oldList, oldIsList := old.([]any)
	newList, newIsList := new.([]any)
	if oldIsList && newIsList {
		compareLists(oldList, newList, path, d)
		return
	}

	if !reflect.DeepEqual(old, new) {
		record(d, path, old, new)
	}
}

func compareMaps(old, new map[string]any, basePath string, d *Diff) {
	keys := make(map[string]bool, len(old)+len(new))
	for k := range old {
		keys[k] = true
	}
	for k := range new {
		keys[k] = true
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		path := joinPath(basePath, k)
		oldV, oldOK := old[k]
		newV, newOK := new[k]
		switch {
		case !oldOK && newOK:
			record(d, path, nil, newV)
		case oldOK && !newOK:
			record(d, path, oldV, nil)
		default:
			compareValues(oldV, newV, path, d)
		}
	}
}

func compareLists(old, new []any, basePath string, d *Diff) {
	oldByKey := indexByKey(old)
	newByKey := indexByKey(new)

	keys := make(map[string]bool, len(oldByKey)+len(newByKey))
	for k := range oldByKey {
		keys[k] = true
	}
	for k := range newByKey {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		path := fmt.Sprintf("%s[%s]", basePath, k)
		oldV, oldOK := oldByKey[k]
		newV, newOK := newByKey[k]
		switch {
		case !oldOK && newOK:
			record(d, path, nil, newV)
		case oldOK && !newOK:
			record(d, path, oldV, nil)
		default:
			compareValues(oldV, newV, path, d)
		}
	}
}

// indexByKey keys a list's entries by their "Name" field when present
// (policies, policy groups), falling back to positional index (rules,
// which have no stable name).
func indexByKey(items []any) map[string]any {
	out := make(map[string]any, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			if name, ok := m["Name"].(string); ok {
				out[name] = item
				continue
			}
		}
		out[fmt.Sprintf("%d", i)] = item
	}
	return out
}

func record(d *Diff, path string, old, new any) {
	change := Change{Path: path, Old: old, New: new, Section: section(path)}
	switch {
	case old == nil:
		change.Type = Added
	case new == nil:
		change.Type = Removed
	default:
		change.Type = Modified
	}
	change.Severity = severity(change)

	switch change.Type {
	case Added:
		d.Added = append(d.Added, change)
	case Removed:
		d.Removed = append(d.Removed, change)
	default:
		d.Modified = append(d.Modified, change)
	}
}

// severity flags changes likely to break a running configuration: removing
// a policy is critical (anything referencing it by name breaks), editing
// MitM/proxy credentials is a warning, everything else is informational.
func severity(c Change) string {
	path := strings.ToLower(c.Path)
	if strings.HasPrefix(path, "policies") && c.Type == Removed {
		return "critical"
	}
	if strings.HasPrefix(path, "policygroups") && c.Type == Removed {
		return "critical"
	}
	if strings.Contains(path, "password") || strings.Contains(path, "passphrase") || strings.Contains(path, "pkcs12") {
		return "warning"
	}
	if strings.HasPrefix(path, "policies") && c.Type == Modified {
		return "warning"
	}
	return "info"
}

func section(path string) string {
	if idx := strings.IndexAny(path, ".["); idx >= 0 {
		return path[:idx]
	}
	return path
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func (d *Diff) calculateSummary() {
	sections := make(map[string]bool)
	for _, c := range append(append(append([]Change{}, d.Added...), d.Modified...), d.Removed...) {
		d.Summary.TotalChanges++
		sections[c.Section] = true
		switch c.Severity {
		case "critical":
			d.Summary.CriticalChanges++
		case "warning":
			d.Summary.WarningChanges++
		}
	}
	for s := range sections {
		d.Summary.AffectedSections = append(d.Summary.AffectedSections, s)
	}
	sort.Strings(d.Summary.AffectedSections)
}
