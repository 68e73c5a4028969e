// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package xref implements the cross-reference validator (component G): it
// checks that every policy-group member and every rule's policy resolves
// to a declared policy, a declared group, or a built-in. It runs as the
// final phase of the forward profile serializer. The typed mapper
// (typed.FromTree) does not run it, so a profile decoded from a tree or
// from JSON is not cross-reference checked.
package xref

import (
	profileerrors "grimm.is/relayprofile/internal/errors"
	"grimm.is/relayprofile/internal/rules"
)

// Built-in policy names, always present in the declared-policy set before
// any cross-reference check runs.
const (
	BuiltinDirect        = "DIRECT"
	BuiltinReject        = "REJECT"
	BuiltinRejectTinyGIF = "REJECT-TINYGIF"
)

// Builtins returns the three built-in policy names in their documented
// prepend order.
func Builtins() []string {
	return []string{BuiltinDirect, BuiltinReject, BuiltinRejectTinyGIF}
}

// Group is one recorded policy group: its declared members and the cursor
// where it was declared, for error reporting when a member can't resolve.
type Group struct {
	Name    string
	Members []string
	Cursor  int
}

// RuleLine is one recorded [Rule] line, captured for re-validation after
// the rest of the document has been consumed.
type RuleLine struct {
	Cursor int
	Raw    string
}

// Input bundles everything the validator needs: the declared policy names
// (built-ins already merged in by the caller), the declared groups with
// their members, and the raw rule lines to re-parse.
type Input struct {
	DeclaredPolicies []string
	Groups           []Group
	RuleLines        []RuleLine
}

// Validate runs the two-phase cross-reference check: first every group
// member must resolve against declared policies or
// declared group names (nested group membership is allowed), then every
// rule line is re-parsed and its policy checked against the combined set
// of declared policies and declared group names. The first offending
// error, with its captured cursor, is returned; nil on success.
func Validate(in Input, registry *rules.Registry) error {
	policySet := make(map[string]bool, len(in.DeclaredPolicies))
	for _, p := range in.DeclaredPolicies {
		policySet[p] = true
	}
	groupSet := make(map[string]bool, len(in.Groups))
	for _, g := range in.Groups {
		groupSet[g.Name] = true
	}

	allowed := make(map[string]bool, len(policySet)+len(groupSet))
	for p := range policySet {
		allowed[p] = true
	}
	for g := range groupSet {
		allowed[g] = true
	}

	for _, g := range in.Groups {
		for _, member := range g.Members {
			if !allowed[member] {
				return profileerrors.UnknownPolicy(g.Cursor, member)
			}
		}
	}

	for _, rl := range in.RuleLines {
		rule, err := registry.Parse(rl.Raw)
		if err != nil {
			return profileerrors.Attr(err, "cursor", rl.Cursor)
		}
		if !allowed[rule.Policy] {
			return profileerrors.UnknownPolicy(rl.Cursor, rule.Policy)
		}
	}

	return nil
}
