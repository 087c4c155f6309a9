package httpclient

import (
	"crypto/tls"
	"strings"
)

// TrustPolicy decides how server certificates are evaluated.
type TrustPolicy int

const (
	// TrustStandard uses the platform's certificate validation.
	TrustStandard TrustPolicy = iota
	// TrustAcceptAll accepts whatever chain the server presents. It disables
	// certificate validation entirely and must only be enabled explicitly.
	TrustAcceptAll
)

func (p TrustPolicy) String() string {
	if p == TrustAcceptAll {
		return "accept_all"
	}
	return "standard"
}

// ParseTrustPolicy maps a config value to a policy; unknown values are standard.
func ParseTrustPolicy(s string) TrustPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept_all", "accept-all", "insecure":
		return TrustAcceptAll
	default:
		return TrustStandard
	}
}

// tlsConfig builds the transport TLS settings for the policy. The returned
// config's VerifyConnection hook runs synchronously during every handshake.
func (p TrustPolicy) tlsConfig(log Logger) *tls.Config {
	if p != TrustAcceptAll {
		return &tls.Config{MinVersion: tls.VersionTLS12}
	}
	log = ensureLogger(log)
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true, //nolint:gosec // opt-in via TrustAcceptAll
		VerifyConnection: func(cs tls.ConnectionState) error {
			log.DebugObj("accepting unverified server certificate", "tls_trust", map[string]any{
				"server_name":  cs.ServerName,
				"peer_certs":   len(cs.PeerCertificates),
				"tls_version":  tls.VersionName(cs.Version),
				"trust_policy": p.String(),
			})
			return nil
		},
	}
}
