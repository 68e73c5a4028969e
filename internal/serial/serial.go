// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package serial implements the profile serializer (component E): the
// forward direction drives the line tokenizer over raw profile bytes and
// dispatches each line into the intermediate tree per section, finishing
// with the cross-reference validation pass; the reverse direction
// reconstructs canonical profile text from the tree.
package serial

import (
	"fmt"
	"sort"
	"strings"

	profileerrors "grimm.is/relayprofile/internal/errors"
	"grimm.is/relayprofile/internal/keyname"
	"grimm.is/relayprofile/internal/rules"
	"grimm.is/relayprofile/internal/token"
	"grimm.is/relayprofile/internal/tree"
	"grimm.is/relayprofile/internal/xref"
)

const (
	markerGeneral      = "[General]"
	markerPolicies     = "[Policies]"
	markerPolicyGroup  = "[Policy Group]"
	markerRule         = "[Rule]"
	markerMitM         = "[MitM]"
)

// Decode drives the tokenizer over buf, building the intermediate tree and
// running cross-reference validation before returning. registry is the
// rule registry to re-parse [Rule] lines against; pass rules.Default for
// the engine's built-in rule kinds.
func Decode(buf []byte, registry *rules.Registry) (*tree.Map, error) {
	root := tree.NewMap()
	root.Set("basicSettings", tree.MapValue(tree.NewMap()))
	root.Set("manInTheMiddleSettings", tree.MapValue(tree.NewMap()))
	root.Set("policies", tree.List())
	root.Set("policyGroups", tree.List())
	root.Set("rules", tree.List())

	var policiesAccum []tree.Value
	var groupsAccum []tree.Value
	declaredPolicies := map[string]bool{}
	var groups []xref.Group
	var ruleLines []xref.RuleLine

	currentMarker := ""

	for _, tok := range token.Tokenize(buf) {
		switch tok.Kind {
		case token.KindSection:
			currentMarker = tok.Marker
			continue
		case token.KindBlank:
			continue
		case token.KindComment:
			if currentMarker == markerRule && rules.IsRegisteredTag(tok.Text) {
				ruleLines = append(ruleLines, xref.RuleLine{Cursor: tok.Cursor, Raw: tok.Raw})
			}
			continue
		}

		if currentMarker == "" {
			return nil, profileerrors.DataCorruptedf("line %d: value outside of any section", tok.Cursor)
		}

		switch currentMarker {
		case markerRule:
			ruleLines = append(ruleLines, xref.RuleLine{Cursor: tok.Cursor, Raw: tok.Raw})

		case markerPolicies:
			if tok.Kind != token.KindKeyValue {
				return nil, profileerrors.InvalidLine(tok.Cursor, "expected name = type inside [Policies]")
			}
			entry, err := decodePolicyLine(tok.Cursor, tok.Key, tok.Value)
			if err != nil {
				return nil, err
			}
			policiesAccum = append(policiesAccum, entry)
			declaredPolicies[tok.Key] = true

		case markerPolicyGroup:
			if tok.Kind != token.KindKeyValue {
				return nil, profileerrors.InvalidLine(tok.Cursor, "expected name = kind, policies = ... inside [Policy Group]")
			}
			entry, group := decodeGroupLine(tok.Cursor, tok.Key, tok.Value)
			groupsAccum = append(groupsAccum, entry)
			groups = append(groups, group)

		case markerGeneral, markerMitM:
			if tok.Kind == token.KindKeyValue {
				m, _ := mustMap(root, keyname.KebabToCamel(currentMarker))
				m.Set(tok.Key, tree.CoerceByKey(tok.Key, tok.Value))
			}

		default:
			// Unrecognized marker: the tokenizer itself never rejects
			// these, so key-value lines are kept in a map under the
			// section's camelCase name. Bare-string lines in such a
			// section (as in [General] and [MitM]) are not kept.
			if tok.Kind == token.KindKeyValue {
				camel := keyname.KebabToCamel(currentMarker)
				m, existing := mustMap(root, camel)
				if !existing {
					root.Set(camel, tree.MapValue(m))
				}
				m.Set(tok.Key, tree.CoerceByKey(tok.Key, tok.Value))
			}
		}
	}

	root.Set("policies", tree.List(policiesAccum...))
	root.Set("policyGroups", tree.List(groupsAccum...))
	root.Set("rules", tree.ListOf(ruleLineValues(ruleLines)))

	declared := make([]string, 0, len(declaredPolicies)+3)
	for name := range declaredPolicies {
		declared = append(declared, name)
	}
	declared = append(declared, xref.Builtins()...)

	if err := xref.Validate(xref.Input{
		DeclaredPolicies: declared,
		Groups:           groups,
		RuleLines:        ruleLines,
	}, registry); err != nil {
		return nil, err
	}

	return root, nil
}

func ruleLineValues(lines []xref.RuleLine) []tree.Value {
	out := make([]tree.Value, len(lines))
	for i, l := range lines {
		out[i] = tree.String(l.Raw)
	}
	return out
}

// mustMap fetches the *tree.Map stored under camel in root, creating an
// empty one (not yet inserted) if absent.
func mustMap(root *tree.Map, camel string) (*tree.Map, bool) {
	if v, ok := root.Get(camel); ok {
		if m, ok := v.Map(); ok {
			return m, true
		}
	}
	return tree.NewMap(), false
}

var builtinLowerType = map[string]string{
	xref.BuiltinDirect:       "direct",
	xref.BuiltinReject:       "reject",
	xref.BuiltinRejectTinyGIF: "reject-tinygif",
}

func decodePolicyLine(cursor int, name, value string) (tree.Value, error) {
	typeTag, fields, order := splitAssignmentList(value)

	if expected, isBuiltin := builtinLowerType[name]; isBuiltin && typeTag != expected {
		return tree.Value{}, profileerrors.InvalidLine(cursor,
			fmt.Sprintf("%s is used as built-in policy type %q, expected %q", name, typeTag, expected))
	}

	entry := tree.NewMap()
	entry.Set("name", tree.String(name))
	entry.Set("type", tree.String(typeTag))
	if len(order) > 0 {
		proxy := tree.NewMap()
		for _, key := range order {
			vals := fields[key]
			if len(vals) > 1 {
				proxy.Set(key, tree.StringList(vals))
			} else {
				proxy.Set(key, tree.CoerceByKey(key, vals[0]))
			}
		}
		entry.Set("proxy", tree.MapValue(proxy))
	}
	return tree.MapValue(entry), nil
}

func decodeGroupLine(cursor int, name, value string) (tree.Value, xref.Group) {
	kind, fields, _ := splitAssignmentList(value)
	if kind == "" {
		kind = "select"
	}
	members := fields["policies"]

	entry := tree.NewMap()
	entry.Set("name", tree.String(name))
	entry.Set("type", tree.String(kind))
	entry.Set("policies", tree.StringList(members))

	return tree.MapValue(entry), xref.Group{Name: name, Members: members, Cursor: cursor}
}

// splitAssignmentList parses a value of the shape "<first>, k1 = v1a, v1b,
// k2 = v2" — the shared grammar behind both [Policies] proxy
// configuration and [Policy Group] membership lists. Tokens are split on
// top-level commas; a token containing "=" starts a new sub-key, and a
// bare token continues the most recently started sub-key's value list
// (this is how "policies = a, b, c" ends up as three values under
// "policies" despite the outer split being comma-based too).
func splitAssignmentList(raw string) (first string, fields map[string][]string, order []string) {
	tokens := splitTrim(raw, ",")
	fields = make(map[string][]string)
	if len(tokens) == 0 {
		return "", fields, nil
	}
	first = tokens[0]

	var currentKey string
	for _, t := range tokens[1:] {
		if idx := strings.IndexByte(t, '='); idx >= 0 {
			key := strings.TrimSpace(t[:idx])
			val := strings.TrimSpace(t[idx+1:])
			if _, seen := fields[key]; !seen {
				order = append(order, key)
			}
			fields[key] = append(fields[key], val)
			currentKey = key
			continue
		}
		if currentKey != "" {
			fields[currentKey] = append(fields[currentKey], strings.TrimSpace(t))
		}
	}
	return first, fields, order
}

func splitTrim(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// Encode reconstructs canonical profile text from root, the reverse of
// Decode. Top-level keys are visited in lexicographic order; each maps
// back to its bracketed section marker via keyname.CamelToKebab.
func Encode(root *tree.Map) []byte {
	keys := append([]string(nil), root.Keys()...)
	sort.Strings(keys)

	var lines []string
	for _, camel := range keys {
		v, _ := root.Get(camel)
		if isEmptySection(v) {
			continue
		}
		lines = append(lines, keyname.CamelToKebab(camel))
		lines = append(lines, encodeSection(camel, v)...)
	}

	text := strings.Join(collapseBlankLines(lines), "\n")
	if text == "" {
		return nil
	}
	return []byte(text + "\n")
}

// isEmptySection reports whether v has nothing to render — an empty map
// or an empty list — in which case Encode omits the whole section rather
// than emitting a bare header line for it.
func isEmptySection(v tree.Value) bool {
	if m, ok := v.Map(); ok {
		return m.Len() == 0
	}
	if items, ok := v.List(); ok {
		return len(items) == 0
	}
	return true
}

func encodeSection(camel string, v tree.Value) []string {
	switch camel {
	case "policyGroups":
		return encodePolicyGroups(v)
	case "policies":
		return encodePolicies(v)
	case "rules":
		return encodeRules(v)
	default:
		return encodeGenericMap(v)
	}
}

func encodePolicyGroups(v tree.Value) []string {
	items, _ := v.List()
	lines := make([]string, 0, len(items))
	for _, item := range items {
		m, _ := item.Map()
		name := getStr(m, "name")
		kind := getStr(m, "type")
		if kind == "" {
			kind = "select"
		}
		members, _ := m.Get("policies")
		lines = append(lines, fmt.Sprintf("%s = %s, policies = %s", name, kind, strings.Join(members.StringsOrEmpty(), ", ")))
	}
	return lines
}

func encodePolicies(v tree.Value) []string {
	items, _ := v.List()
	lines := make([]string, 0, len(items))
	for _, item := range items {
		m, _ := item.Map()
		name := getStr(m, "name")
		typ := getStr(m, "type")
		line := name + " = " + typ

		if _, isBuiltin := builtinLowerType[name]; !isBuiltin {
			if proxyV, ok := m.Get("proxy"); ok {
				if proxy, ok := proxyV.Map(); ok {
					keys := append([]string(nil), proxy.Keys()...)
					sort.Strings(keys)
					var parts []string
					for _, pk := range keys {
						pv, _ := proxy.Get(pk)
						parts = append(parts, pk+" = "+renderValue(pv))
					}
					if len(parts) > 0 {
						line += ", " + strings.Join(parts, ", ")
					}
				}
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func encodeRules(v tree.Value) []string {
	items, _ := v.List()
	lines := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.Str()
		lines = append(lines, s)
	}
	return lines
}

func encodeGenericMap(v tree.Value) []string {
	m, ok := v.Map()
	if !ok {
		return nil
	}
	keys := append([]string(nil), m.Keys()...)
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		val, _ := m.Get(k)
		lines = append(lines, k+" = "+renderValue(val))
	}
	return lines
}

func renderValue(v tree.Value) string {
	switch v.Kind() {
	case tree.KindList:
		return strings.Join(v.StringsOrEmpty(), ", ")
	case tree.KindBool:
		b, _ := v.Bool()
		if b {
			return "true"
		}
		return "false"
	case tree.KindNumber:
		s, _ := v.NumberText()
		return s
	case tree.KindString:
		s, _ := v.Str()
		return s
	default:
		return ""
	}
}

func getStr(m *tree.Map, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.Str()
	return s
}

// collapseBlankLines folds runs of consecutive empty strings in lines down
// to a single empty string, matching the "consecutive blank lines
// collapse to one" rule for reconstructed text.
func collapseBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, l := range lines {
		blank := strings.TrimSpace(l) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, l)
		prevBlank = blank
	}
	return out
}
