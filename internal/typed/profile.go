// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package typed implements the typed mapper (component F): it decodes the
// intermediate tree into strongly-typed profile entities and encodes them
// back. It never touches raw bytes or the tokenizer directly — every
// conversion flows through internal/tree.
package typed

import (
	"encoding/base64"
	"errors"
	"net/url"

	profileerrors "grimm.is/relayprofile/internal/errors"
	"grimm.is/relayprofile/internal/rules"
	"grimm.is/relayprofile/internal/tree"
	"grimm.is/relayprofile/internal/xref"
)

// DefaultAlgorithm is the Proxy.Algorithm value omitted on encode and
// filled in on decode when the field is absent.
const DefaultAlgorithm = "aes-128-gcm"

// Profile is the root of the typed configuration tree.
type Profile struct {
	BasicSettings          BasicSettings
	ManInTheMiddleSettings MitMSettings
	Policies               []ConnectionPolicy
	PolicyGroups           []PolicyGroup
	Rules                  []Rule
}

// ListenAddress is an optional host+port pair for the HTTP/SOCKS listeners.
type ListenAddress struct {
	Host string
	Port uint16
}

// BasicSettings is the [General] section.
type BasicSettings struct {
	LogLevel               string
	DNSServers             []string
	Exceptions             []string
	HTTPListen             *ListenAddress
	SOCKSListen            *ListenAddress
	ExcludeSimpleHostnames bool
}

// DefaultBasicSettings returns the documented defaults: info log level,
// empty lists, no listen addresses, flag false.
func DefaultBasicSettings() BasicSettings {
	return BasicSettings{LogLevel: "info"}
}

// MitMSettings is the [MitM] section.
type MitMSettings struct {
	SkipCertificateVerification bool
	Hostnames                   []string
	PKCS12                      string // base64, empty if absent
	Passphrase                  string
}

// PolicyType discriminates a ConnectionPolicy.
type PolicyType string

const (
	PolicyDirect        PolicyType = "direct"
	PolicyReject        PolicyType = "reject"
	PolicyRejectTinyGIF PolicyType = "reject-tinygif"
	PolicyProxy         PolicyType = "proxy"
)

// ConnectionPolicy is one entry of Profile.Policies.
type ConnectionPolicy struct {
	Name  string
	Type  PolicyType
	Proxy *Proxy // set only when Type == PolicyProxy
}

// Proxy describes a proxy-type policy's connection parameters. Zero values
// are the documented defaults and are omitted on encode.
type Proxy struct {
	ServerAddress               string
	Port                        uint16
	Protocol                    string
	Username                    string
	Password                    string
	AuthenticationRequired      bool
	PreferHTTPTunneling         bool
	OverTLS                     bool
	OverWebsocket               bool
	WebSocketPath               string
	SkipCertificateVerification bool
	SNI                         string
	CertificatePinning          string
	Algorithm                   string
}

// PolicyGroup is one entry of Profile.PolicyGroups.
type PolicyGroup struct {
	Name     string
	Type     string
	Policies []string
}

// Rule is one entry of Profile.Rules. DOMAIN-SET and RULE-SET rules carry
// a Resource holder for their lazily loaded child list; every other kind
// leaves it nil.
type Rule struct {
	Tag        string
	Expression string
	Policy     string
	Disabled   bool
	Comment    string
	Resource   *ResourceHolder
}

func builtinPolicyType(name string) (PolicyType, bool) {
	switch name {
	case xref.BuiltinDirect:
		return PolicyDirect, true
	case xref.BuiltinReject:
		return PolicyReject, true
	case xref.BuiltinRejectTinyGIF:
		return PolicyRejectTinyGIF, true
	default:
		return "", false
	}
}

func builtinPolicyName(t PolicyType) (string, bool) {
	switch t {
	case PolicyDirect:
		return xref.BuiltinDirect, true
	case PolicyReject:
		return xref.BuiltinReject, true
	case PolicyRejectTinyGIF:
		return xref.BuiltinRejectTinyGIF, true
	default:
		return "", false
	}
}

// FromTree decodes a Profile from root, the intermediate tree produced by
// internal/serial's forward direction (or an equivalent tree built by a
// caller from JSON).
func FromTree(root *tree.Map, registry *rules.Registry) (*Profile, error) {
	p := &Profile{BasicSettings: DefaultBasicSettings()}

	if v, ok := root.Get("basicSettings"); ok {
		m, ok := v.Map()
		if !ok {
			return nil, profileerrors.DataCorrupted("basicSettings is not a map")
		}
		decodeBasicSettings(m, &p.BasicSettings)
	}

	if v, ok := root.Get("manInTheMiddleSettings"); ok {
		m, ok := v.Map()
		if !ok {
			return nil, profileerrors.DataCorrupted("manInTheMiddleSettings is not a map")
		}
		if err := decodeMitM(m, &p.ManInTheMiddleSettings); err != nil {
			return nil, err
		}
	}

	if v, ok := root.Get("policies"); ok {
		items, ok := v.List()
		if !ok {
			return nil, profileerrors.DataCorrupted("policies is not a list")
		}
		policies, err := decodePolicies(items)
		if err != nil {
			return nil, err
		}
		p.Policies = policies
	}
	p.Policies = prependMissingBuiltins(p.Policies)

	if v, ok := root.Get("policyGroups"); ok {
		items, ok := v.List()
		if !ok {
			return nil, profileerrors.DataCorrupted("policyGroups is not a list")
		}
		groups, err := decodePolicyGroups(items)
		if err != nil {
			return nil, err
		}
		p.PolicyGroups = groups
	}

	if v, ok := root.Get("rules"); ok {
		items, ok := v.List()
		if !ok {
			return nil, profileerrors.DataCorrupted("rules is not a list")
		}
		decodedRules, err := decodeRules(items, registry)
		if err != nil {
			return nil, err
		}
		p.Rules = decodedRules
	}

	return p, nil
}

func decodeBasicSettings(m *tree.Map, out *BasicSettings) {
	if v, ok := m.Get("log-level"); ok {
		out.LogLevel = v.StrOr(out.LogLevel)
	}
	if v, ok := m.Get("dns-servers"); ok {
		out.DNSServers = v.StringsOrEmpty()
	}
	if v, ok := m.Get("exceptions"); ok {
		out.Exceptions = v.StringsOrEmpty()
	}
	if v, ok := m.Get("exclude-simple-hostnames"); ok {
		out.ExcludeSimpleHostnames = v.BoolOr(false)
	}
	host, hasHost := m.Get("http-listen-host")
	port, hasPort := m.Get("http-listen-port")
	if hasHost || hasPort {
		out.HTTPListen = &ListenAddress{
			Host: host.StrOr(""),
			Port: uint16(port.Int64Or(0)),
		}
	}
	host, hasHost = m.Get("socks-listen-host")
	port, hasPort = m.Get("socks-listen-port")
	if hasHost || hasPort {
		out.SOCKSListen = &ListenAddress{
			Host: host.StrOr(""),
			Port: uint16(port.Int64Or(0)),
		}
	}
}

func decodeMitM(m *tree.Map, out *MitMSettings) error {
	if v, ok := m.Get("skip-certificate-verification"); ok {
		out.SkipCertificateVerification = v.BoolOr(false)
	}
	if v, ok := m.Get("hostnames"); ok {
		out.Hostnames = v.StringsOrEmpty()
	}
	if v, ok := m.Get("pkcs12"); ok {
		out.PKCS12 = v.StrOr("")
	}
	if v, ok := m.Get("passphrase"); ok {
		out.Passphrase = v.StrOr("")
	}
	if out.PKCS12 != "" {
		if err := validatePKCS12Shape(out.PKCS12, out.Passphrase); err != nil {
			return err
		}
	}
	return nil
}

func validatePKCS12Shape(blob, passphrase string) error {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return profileerrors.DataCorruptedf("man-in-the-middle pkcs12 is not valid base64: %v", err)
	}
	if len(raw) == 0 {
		return profileerrors.DataCorrupted("man-in-the-middle pkcs12 blob is empty")
	}
	return validatePKCS12Bytes(raw, passphrase)
}

func decodePolicies(items []tree.Value) ([]ConnectionPolicy, error) {
	out := make([]ConnectionPolicy, 0, len(items))
	for _, item := range items {
		m, ok := item.Map()
		if !ok {
			return nil, profileerrors.DataCorrupted("policy entry is not a map")
		}
		name := getStr(m, "name")
		typeTag := getStr(m, "type")

		policy := ConnectionPolicy{Name: name}
		if pt, ok := builtinPolicyType(name); ok {
			policy.Type = pt
		} else {
			policy.Type = PolicyProxy
			proxy := DefaultProxy()
			if proxyV, ok := m.Get("proxy"); ok {
				if proxyMap, ok := proxyV.Map(); ok {
					decodeProxy(proxyMap, &proxy)
				}
			}
			proxy.Protocol = typeTag
			policy.Proxy = &proxy
		}
		out = append(out, policy)
	}
	return out, nil
}

// DefaultProxy returns a Proxy with every optional field at its documented
// default.
func DefaultProxy() Proxy {
	return Proxy{Algorithm: DefaultAlgorithm}
}

func decodeProxy(m *tree.Map, out *Proxy) {
	out.ServerAddress = getStrField(m, "server-address", out.ServerAddress)
	out.Port = uint16(getIntField(m, "port", int64(out.Port)))
	out.Username = getStrField(m, "username", out.Username)
	out.Password = getStrField(m, "password", out.Password)
	out.AuthenticationRequired = getBoolField(m, "authentication-required", out.AuthenticationRequired)
	out.PreferHTTPTunneling = getBoolField(m, "prefer-http-tunneling", out.PreferHTTPTunneling)
	out.OverTLS = getBoolField(m, "over-tls", out.OverTLS)
	out.OverWebsocket = getBoolField(m, "over-websocket", out.OverWebsocket)
	out.WebSocketPath = getStrField(m, "web-socket-path", out.WebSocketPath)
	out.SkipCertificateVerification = getBoolField(m, "skip-certificate-verification", out.SkipCertificateVerification)
	out.SNI = getStrField(m, "sni", out.SNI)
	out.CertificatePinning = getStrField(m, "certificate-pinning", out.CertificatePinning)
	if v, ok := m.Get("algorithm"); ok {
		out.Algorithm = v.StrOr(out.Algorithm)
	}
}

func getStrField(m *tree.Map, key, def string) string {
	if v, ok := m.Get(key); ok {
		return v.StrOr(def)
	}
	return def
}

func getBoolField(m *tree.Map, key string, def bool) bool {
	if v, ok := m.Get(key); ok {
		return v.BoolOr(def)
	}
	return def
}

func getIntField(m *tree.Map, key string, def int64) int64 {
	if v, ok := m.Get(key); ok {
		return v.Int64Or(def)
	}
	return def
}

// prependMissingBuiltins ensures DIRECT, REJECT, REJECT-TINYGIF are
// present in that order, prepending whichever are missing ahead of
// whatever the profile explicitly declared.
func prependMissingBuiltins(policies []ConnectionPolicy) []ConnectionPolicy {
	present := make(map[string]bool, len(policies))
	for _, p := range policies {
		present[p.Name] = true
	}

	var missing []ConnectionPolicy
	for _, name := range xref.Builtins() {
		if !present[name] {
			pt, _ := builtinPolicyType(name)
			missing = append(missing, ConnectionPolicy{Name: name, Type: pt})
		}
	}
	if len(missing) == 0 {
		return policies
	}
	return append(missing, policies...)
}

func decodePolicyGroups(items []tree.Value) ([]PolicyGroup, error) {
	out := make([]PolicyGroup, 0, len(items))
	for _, item := range items {
		m, ok := item.Map()
		if !ok {
			return nil, profileerrors.DataCorrupted("policy group entry is not a map")
		}
		membersV, _ := m.Get("policies")
		out = append(out, PolicyGroup{
			Name:     getStr(m, "name"),
			Type:     getStr(m, "type"),
			Policies: membersV.StringsOrEmpty(),
		})
	}
	return out, nil
}

func decodeRules(items []tree.Value, registry *rules.Registry) ([]Rule, error) {
	out := make([]Rule, 0, len(items))
	for _, item := range items {
		raw, ok := item.Str()
		if !ok {
			return nil, profileerrors.DataCorrupted("rule entry is not a string")
		}
		parsed, err := registry.Parse(raw)
		if err != nil {
			return nil, err
		}

		kind, _ := registry.Lookup(parsed.Tag)
		r := Rule{
			Tag:        parsed.Tag,
			Expression: parsed.Expression,
			Policy:     parsed.Policy,
			Disabled:   parsed.Disabled,
			Comment:    parsed.Comment,
		}
		if kind.HasExternalResource {
			r.Resource = NewResourceHolder()
			if err := validateExternalResourceURL(parsed.Expression); err != nil {
				return nil, err
			}
		} else if parsed.Tag == rules.TagDomain || parsed.Tag == rules.TagDomainSuffix || parsed.Tag == rules.TagDomainKeyword {
			if err := validateDomainExpression(parsed.Expression); err != nil {
				return nil, err
			}
		}
		out = append(out, r)
	}
	return out, nil
}

var errNotAbsoluteURL = errors.New("external resource expression is not an absolute URL")

func validateExternalResourceURL(expression string) error {
	u, err := url.Parse(expression)
	if err != nil {
		return profileerrors.InvalidExternalResources(expression, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return profileerrors.InvalidExternalResources(expression, errNotAbsoluteURL)
	}
	return nil
}

func getStr(m *tree.Map, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	return v.StrOr("")
}
