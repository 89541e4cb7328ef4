package service

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HostMatcher decides whether a remote host is an allowed source for
// imported files. Patterns come in three shapes:
//
//	cdn.example.com   exact host
//	*.example.com     any subdomain of example.com (not the apex)
//	example.com       the registrable domain: apex plus every subdomain
//
// The third form relies on the public suffix list, so "example.co.uk"
// matches "a.example.co.uk" while "co.uk" on its own matches nothing.
type HostMatcher struct {
	exact     map[string]struct{}
	wildcards []string
	domains   map[string]struct{}
}

// NewHostMatcher compiles the allowlist patterns. Empty entries are skipped.
func NewHostMatcher(patterns []string) *HostMatcher {
	m := &HostMatcher{
		exact:   make(map[string]struct{}),
		domains: make(map[string]struct{}),
	}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, "*."); ok {
			m.wildcards = append(m.wildcards, rest)
			continue
		}
		m.exact[p] = struct{}{}
		if etld, err := publicsuffix.EffectiveTLDPlusOne(p); err == nil && etld == p {
			m.domains[p] = struct{}{}
		}
	}
	return m
}

// Allow reports whether host (with optional port) matches the allowlist.
func (m *HostMatcher) Allow(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return false
	}

	if _, ok := m.exact[host]; ok {
		return true
	}
	for _, suffix := range m.wildcards {
		if strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		if _, ok := m.domains[etld]; ok {
			return true
		}
	}
	return false
}
