package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

type SecurityConfig interface {
	GetRequirePKCE() bool
	GetAuthStateTimeout() time.Duration
	GetMaxSessionAge() time.Duration
	GetRateLimitAuth() int
	GetTrustedProxies() []netip.Prefix
	GetSecureCookies() bool
}

type Security struct {
	vars *EnvVars
}

var _ SecurityConfig = Security{}

func (Security) GetRequirePKCE() bool {
	return true
}

// GetAuthStateTimeout bounds the browser round trip between /auth and the callback.
func (s Security) GetAuthStateTimeout() time.Duration {
	if s.vars.AuthStateTimeout <= 0 {
		return 10 * time.Minute
	}
	return s.vars.AuthStateTimeout
}

func (s Security) GetMaxSessionAge() time.Duration {
	if s.vars.SessionMaxAge <= 0 {
		return 8 * time.Hour
	}
	return s.vars.SessionMaxAge
}

// GetRateLimitAuth is the number of authorization starts allowed per minute per client IP.
func (s Security) GetRateLimitAuth() int {
	if s.vars.RateLimitAuth < 1 {
		return 20
	}
	return s.vars.RateLimitAuth
}

// GetTrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP
// headers are believed. Empty means the connection's address is the client.
// Invalid entries are rejected by Validate.
func (s Security) GetTrustedProxies() []netip.Prefix {
	prefixes, _ := parseTrustedProxies(s.vars.TrustedProxies)
	return prefixes
}

func (s Security) GetSecureCookies() bool {
	return s.vars.GetEnv() != "DEV"
}

// parseTrustedProxies accepts CIDR prefixes ("10.0.0.0/8") and single
// addresses ("10.1.2.3").
func parseTrustedProxies(raw []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return prefixes, fmt.Errorf("invalid proxy prefix %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return prefixes, fmt.Errorf("invalid proxy address %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
