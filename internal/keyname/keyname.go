// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package keyname implements the bidirectional conversion between the
// profile's kebab-case text keys / section markers and the camelCase object
// keys of the intermediate tree (component H of the engine).
package keyname

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// sectionMarkers holds the hard-coded marker<->camel mapping. Order doesn't
// matter for lookup, but it is kept in documented order (General, Rule,
// Policies, Policy Group, MitM) for readability.
var sectionMarkers = [...][2]string{
	{"[General]", "basicSettings"},
	{"[Rule]", "rules"},
	{"[Policies]", "policies"},
	{"[Policy Group]", "policyGroups"},
	{"[MitM]", "manInTheMiddleSettings"},
}

func markerToCamel(marker string) (string, bool) {
	for _, pair := range sectionMarkers {
		if pair[0] == marker {
			return pair[1], true
		}
	}
	return "", false
}

func camelToMarker(camel string) (string, bool) {
	for _, pair := range sectionMarkers {
		if pair[1] == camel {
			return pair[0], true
		}
	}
	return "", false
}

// KebabToCamel converts a kebab-case key (or a bracketed section marker) to
// its camelCase form. Recognized section markers use the hard-coded table;
// everything else is split on '-', with the first segment lowercased and
// every subsequent segment title-cased, preserving any leading or trailing
// run of dashes verbatim.
func KebabToCamel(key string) string {
	if camel, ok := markerToCamel(key); ok {
		return camel
	}
	if key == "" {
		return key
	}

	leadEnd := 0
	for leadEnd < len(key) && key[leadEnd] == '-' {
		leadEnd++
	}
	trailStart := len(key)
	for trailStart > leadEnd && key[trailStart-1] == '-' {
		trailStart--
	}
	lead, trail := key[:leadEnd], key[trailStart:]
	core := key[leadEnd:trailStart]
	if core == "" {
		return key
	}

	segments := strings.Split(core, "-")
	var b strings.Builder
	b.WriteString(lead)
	first := true
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if first {
			b.WriteString(strings.ToLower(seg))
			first = false
			continue
		}
		b.WriteString(titleCaser.String(strings.ToLower(seg)))
	}
	b.WriteString(trail)
	return b.String()
}

// CamelToKebab is the inverse of KebabToCamel: recognized camelCase section
// names map back to their bracketed marker via the hard-coded table;
// otherwise the first character is lowercased and '-' is inserted before
// every uppercase letter, which is then lowercased.
func CamelToKebab(camel string) string {
	if marker, ok := camelToMarker(camel); ok {
		return marker
	}
	if camel == "" {
		return camel
	}

	var b strings.Builder
	for i, r := range camel {
		if i == 0 {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Sections returns the recognized section markers in table order, for
// callers that need a fixed emission order (the reverse serializer sorts
// keys lexicographically instead).
func Sections() []string {
	out := make([]string, len(sectionMarkers))
	for i, pair := range sectionMarkers {
		out[i] = pair[0]
	}
	return out
}
