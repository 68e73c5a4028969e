// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package rules implements the rule registry (component B) and the rule
// parser/formatter (component C). Every rule variant — DOMAIN,
// DOMAIN-SUFFIX, DOMAIN-KEYWORD, DOMAIN-SET, RULE-SET, GEOIP, FINAL — is
// represented by the same Rule shape; what differs between kinds is arity
// and whether the expression names an external resource, both captured by
// the kind's registry entry.
package rules

import (
	"strings"
)

// Rule is the parsed shape shared by every registered rule kind.
type Rule struct {
	Tag        string
	Expression string
	Policy     string
	Disabled   bool
	Comment    string
}

// FormatStyle selects which fields Format renders. The zero value renders
// nothing; use CompleteStyle or OmittedStyle, or build one field at a time.
type FormatStyle struct {
	Flag       bool
	Tag        bool
	Expression bool
	Policy     bool
	Comment    bool
}

// CompleteStyle renders every field, including the expression. This is the
// default canonical form for every rule kind except FINAL.
func CompleteStyle() FormatStyle {
	return FormatStyle{Flag: true, Tag: true, Expression: true, Policy: true, Comment: true}
}

// OmittedStyle renders every field except the expression, the canonical
// form for FINAL (which carries no expression).
func OmittedStyle() FormatStyle {
	return FormatStyle{Flag: true, Tag: true, Policy: true, Comment: true}
}

// Format renders r as its canonical text: "[# ]<tag>,[<expression>,]<policy>[ // <comment>]".
func Format(r Rule, style FormatStyle) string {
	var b strings.Builder
	if style.Flag && r.Disabled {
		b.WriteString("# ")
	}
	wrote := false
	if style.Tag {
		b.WriteString(r.Tag)
		wrote = true
	}
	if style.Expression && r.Expression != "" {
		if wrote {
			b.WriteString(",")
		}
		b.WriteString(r.Expression)
		wrote = true
	}
	if style.Policy {
		if wrote {
			b.WriteString(",")
		}
		b.WriteString(r.Policy)
	}
	if style.Comment && r.Comment != "" {
		b.WriteString(" // ")
		b.WriteString(r.Comment)
	}
	return b.String()
}

// CanonicalFormat renders r using CompleteStyle, unless r carries no
// expression (the FINAL case), in which case Format already skips the
// empty expression field on its own.
func CanonicalFormat(r Rule) string {
	return Format(r, CompleteStyle())
}

// fields is the result of splitting a description into its tag and the
// fields that follow it, before arity (FINAL vs. everything else) is known.
type fields struct {
	tag      string
	disabled bool
	rest     []string
}

func splitFields(description string) fields {
	desc := strings.TrimSpace(description)
	parts := dropTrailingEmpty(splitTrim(desc, ","))
	if len(parts) == 0 {
		return fields{}
	}

	tagField := parts[0]
	var disabled bool
	if strings.HasPrefix(tagField, "#") {
		disabled = true
		tagField = strings.TrimSpace(strings.TrimPrefix(tagField, "#"))
	}
	return fields{tag: tagField, disabled: disabled, rest: parts[1:]}
}

// dropTrailingEmpty strips empty trailing fields left by a trailing comma
// (e.g. "FINAL," splitting to ["FINAL", ""]) so a missing field is measured
// as missing rather than counted toward a kind's arity.
func dropTrailingEmpty(parts []string) []string {
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// Parse splits a trimmed rule description into its fields: the last field
// after the tag is always the policy (with its optional trailing comment);
// an expression is present only when more than one field follows the tag.
// This needs no knowledge of the kind's registered arity. Callers that want
// the tag checked against a specific registered kind use registry.Parse.
func Parse(description string) Rule {
	f := splitFields(description)
	var policyField string
	if len(f.rest) > 0 {
		policyField = f.rest[len(f.rest)-1]
	}
	policy, comment := splitComment(policyField)

	var expression string
	if len(f.rest) > 1 {
		expression = f.rest[0]
	}

	return Rule{
		Tag:        f.tag,
		Expression: expression,
		Policy:     policy,
		Disabled:   f.disabled,
		Comment:    comment,
	}
}

// splitComment pulls a trailing " // comment" suffix (exactly two slashes)
// off of s, returning the remaining trimmed field and the comment text.
func splitComment(s string) (field string, comment string) {
	if idx := strings.Index(s, " // "); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+4:])
	}
	return strings.TrimSpace(s), ""
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

