// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package typed

import (
	"grimm.is/relayprofile/internal/rules"
	"grimm.is/relayprofile/internal/serial"
	"grimm.is/relayprofile/internal/tree"
)

// DecodeProfile parses buf into a Profile, driving the tokenizer,
// serializer and cross-reference validator before mapping into typed
// entities.
func DecodeProfile(buf []byte) (*Profile, error) {
	root, err := serial.Decode(buf, rules.Default)
	if err != nil {
		return nil, err
	}
	return FromTree(root, rules.Default)
}

// EncodeProfile renders p back to canonical profile text.
func EncodeProfile(p *Profile) []byte {
	return serial.Encode(ToTree(p))
}

// ToTree converts p into the intermediate tree, the reverse of FromTree.
// Built-in policies whose proxy is nil are encoded with no proxy
// configuration block; defaulted Proxy fields are omitted the same way
// DefaultProxy would produce them so re-decoding restores the default.
func ToTree(p *Profile) *tree.Map {
	root := tree.NewMap()
	root.Set("basicSettings", tree.MapValue(encodeBasicSettings(p.BasicSettings)))
	root.Set("manInTheMiddleSettings", tree.MapValue(encodeMitM(p.ManInTheMiddleSettings)))
	root.Set("policies", tree.ListOf(encodePolicies(p.Policies)))
	root.Set("policyGroups", tree.ListOf(encodePolicyGroups(p.PolicyGroups)))
	root.Set("rules", tree.ListOf(encodeRules(p.Rules)))
	return root
}

func encodeBasicSettings(b BasicSettings) *tree.Map {
	m := tree.NewMap()
	if b.LogLevel != "" {
		m.Set("log-level", tree.String(b.LogLevel))
	}
	if len(b.DNSServers) > 0 {
		m.Set("dns-servers", tree.StringList(b.DNSServers))
	}
	if len(b.Exceptions) > 0 {
		m.Set("exceptions", tree.StringList(b.Exceptions))
	}
	if b.ExcludeSimpleHostnames {
		m.Set("exclude-simple-hostnames", tree.Bool(true))
	}
	if b.HTTPListen != nil {
		m.Set("http-listen-host", tree.String(b.HTTPListen.Host))
		m.Set("http-listen-port", tree.NumberFromInt(int64(b.HTTPListen.Port)))
	}
	if b.SOCKSListen != nil {
		m.Set("socks-listen-host", tree.String(b.SOCKSListen.Host))
		m.Set("socks-listen-port", tree.NumberFromInt(int64(b.SOCKSListen.Port)))
	}
	return m
}

func encodeMitM(mitm MitMSettings) *tree.Map {
	m := tree.NewMap()
	if mitm.SkipCertificateVerification {
		m.Set("skip-certificate-verification", tree.Bool(true))
	}
	if len(mitm.Hostnames) > 0 {
		m.Set("hostnames", tree.StringList(mitm.Hostnames))
	}
	if mitm.PKCS12 != "" {
		m.Set("pkcs12", tree.String(mitm.PKCS12))
	}
	if mitm.Passphrase != "" {
		m.Set("passphrase", tree.String(mitm.Passphrase))
	}
	return m
}

func encodePolicies(policies []ConnectionPolicy) []tree.Value {
	out := make([]tree.Value, 0, len(policies))
	for _, p := range policies {
		m := tree.NewMap()
		m.Set("name", tree.String(p.Name))
		if name, ok := builtinPolicyName(p.Type); ok {
			m.Set("type", tree.String(builtinLowerType[name]))
			out = append(out, tree.MapValue(m))
			continue
		}
		if p.Proxy != nil {
			m.Set("type", tree.String(p.Proxy.Protocol))
			if proxy := encodeProxy(*p.Proxy); proxy.Len() > 0 {
				m.Set("proxy", tree.MapValue(proxy))
			}
		}
		out = append(out, tree.MapValue(m))
	}
	return out
}

var builtinLowerType = map[string]string{
	"DIRECT":         "direct",
	"REJECT":         "reject",
	"REJECT-TINYGIF": "reject-tinygif",
}

func encodeProxy(p Proxy) *tree.Map {
	def := DefaultProxy()
	m := tree.NewMap()
	setIfNonZeroStr(m, "server-address", p.ServerAddress)
	if p.Port != 0 {
		m.Set("port", tree.NumberFromInt(int64(p.Port)))
	}
	setIfNonZeroStr(m, "username", p.Username)
	setIfNonZeroStr(m, "password", p.Password)
	setIfTrue(m, "authentication-required", p.AuthenticationRequired)
	setIfTrue(m, "prefer-http-tunneling", p.PreferHTTPTunneling)
	setIfTrue(m, "over-tls", p.OverTLS)
	setIfTrue(m, "over-websocket", p.OverWebsocket)
	setIfNonZeroStr(m, "web-socket-path", p.WebSocketPath)
	setIfTrue(m, "skip-certificate-verification", p.SkipCertificateVerification)
	setIfNonZeroStr(m, "sni", p.SNI)
	setIfNonZeroStr(m, "certificate-pinning", p.CertificatePinning)
	if p.Algorithm != "" && p.Algorithm != def.Algorithm {
		m.Set("algorithm", tree.String(p.Algorithm))
	}
	return m
}

func setIfNonZeroStr(m *tree.Map, key, val string) {
	if val != "" {
		m.Set(key, tree.String(val))
	}
}

func setIfTrue(m *tree.Map, key string, val bool) {
	if val {
		m.Set(key, tree.Bool(true))
	}
}

func encodePolicyGroups(groups []PolicyGroup) []tree.Value {
	out := make([]tree.Value, 0, len(groups))
	for _, g := range groups {
		m := tree.NewMap()
		m.Set("name", tree.String(g.Name))
		m.Set("type", tree.String(g.Type))
		m.Set("policies", tree.StringList(g.Policies))
		out = append(out, tree.MapValue(m))
	}
	return out
}

func encodeRules(rs []Rule) []tree.Value {
	out := make([]tree.Value, 0, len(rs))
	for _, r := range rs {
		out = append(out, tree.String(rules.CanonicalFormat(rules.Rule{
			Tag:        r.Tag,
			Expression: r.Expression,
			Policy:     r.Policy,
			Disabled:   r.Disabled,
			Comment:    r.Comment,
		})))
	}
	return out
}
