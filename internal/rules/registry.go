// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"strings"
	"sync"

	profileerrors "grimm.is/relayprofile/internal/errors"
)

// Kind describes one registered rule tag: its arity and whether the rule's
// expression names an external resource (DOMAIN-SET, RULE-SET). A Kind
// carries no validator or constructor of its own; every kind is validated
// and built by the same Registry.Parse/Validate and the shared Parse.
type Kind struct {
	Label               string
	MinFields           int // minimum number of fields after the tag
	HasExternalResource bool
}

// Registry is a process-wide, read-many/write-rare map from rule tag to
// Kind. Registrations are idempotent (last writer wins); there is no
// deregistration.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// Register adds or overwrites k under k.Label.
func (r *Registry) Register(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[k.Label] = k
}

// Lookup returns the Kind registered under tag, if any.
func (r *Registry) Lookup(tag string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[tag]
	return k, ok
}

// Parse parses description against the kind registered for its tag. It
// fails with UnsupportedRule if the tag isn't registered, with
// RuleFieldMissing if there are fewer fields than the kind's minimum.
func (r *Registry) Parse(description string) (Rule, error) {
	f := splitFields(description)
	if f.tag == "" {
		return Rule{}, profileerrors.InvalidLine(0, "empty rule description")
	}

	kind, ok := r.Lookup(f.tag)
	if !ok {
		return Rule{}, profileerrors.UnsupportedRule(f.tag)
	}
	if len(f.rest) < kind.MinFields {
		return Rule{}, profileerrors.RuleFieldMissing(f.tag, len(f.rest), kind.MinFields)
	}

	return Parse(description), nil
}

// ParseAs parses description and additionally requires its tag to match
// expected exactly, reporting FailedToParseAs when the description's tag
// names a different registered kind. Used by the typed mapper when it
// expects a specific rule kind at a given position.
func (r *Registry) ParseAs(expected, description string) (Rule, error) {
	rule, err := r.Parse(description)
	if err != nil {
		return Rule{}, err
	}
	if rule.Tag != expected {
		return Rule{}, profileerrors.FailedToParseAs(expected, rule.Tag)
	}
	return rule, nil
}

// Validate re-verifies description parses as the kind registered under its
// own tag, without constructing a Rule the caller keeps — a pure arity and
// existence check.
func (r *Registry) Validate(description string) error {
	_, err := r.Parse(description)
	return err
}

// Tags returns every registered tag, for tooling such as the rule-kind
// reference doc generator. Order is unspecified.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.kinds))
	for tag := range r.kinds {
		out = append(out, tag)
	}
	return out
}

// The seven rule kinds named in the data model. FINAL has arity 1 (policy
// only); every other kind has arity 2 (expression, policy). DOMAIN-SET and
// RULE-SET carry an external resource URL as their expression.
const (
	TagDomain        = "DOMAIN"
	TagDomainSuffix  = "DOMAIN-SUFFIX"
	TagDomainKeyword = "DOMAIN-KEYWORD"
	TagDomainSet     = "DOMAIN-SET"
	TagRuleSet       = "RULE-SET"
	TagGeoIP         = "GEOIP"
	TagFinal         = "FINAL"
)

// Default is the process-wide registry populated with the seven built-in
// rule kinds at package initialization, matching the "registration happens
// once at engine initialization" concurrency rule.
var Default = NewRegistry()

func init() {
	for _, k := range []Kind{
		{Label: TagDomain, MinFields: 2},
		{Label: TagDomainSuffix, MinFields: 2},
		{Label: TagDomainKeyword, MinFields: 2},
		{Label: TagDomainSet, MinFields: 2, HasExternalResource: true},
		{Label: TagRuleSet, MinFields: 2, HasExternalResource: true},
		{Label: TagGeoIP, MinFields: 2},
		{Label: TagFinal, MinFields: 1},
	} {
		Default.Register(k)
	}
}

// IsRegisteredTag reports whether s, with any leading "# " disabled marker
// stripped, names a kind in Default. Used by the serializer to decide
// whether a bare string inside [Rule] looks like a rule line at all.
func IsRegisteredTag(s string) bool {
	tag := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	tag = strings.TrimSpace(tag)
	_, ok := Default.Lookup(tag)
	return ok
}
