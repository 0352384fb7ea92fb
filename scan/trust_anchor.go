package scan

import (
	"fmt"
	"os"
	"strings"

	"github.com/miekg/dns"
)

// TrustAnchorStore holds the DNSKEY trust anchors used for DNSSEC
// verification, keyed by zone name
type TrustAnchorStore struct {
	anchors map[string][]*dns.DNSKEY
}

// NewTrustAnchorStore loads trust anchors from a file of DNSKEY records
// in zone file format, one per line, e.g.
//
//	. 172800 IN DNSKEY 257 3 8 AwEAAaz/tAm8yTn4Mfeh5eyI96WSVexTBAvk...
//
// DS records and comments are skipped.
func NewTrustAnchorStore(path string) (*TrustAnchorStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read trust anchor file: %w", err)
	}

	store := &TrustAnchorStore{
		anchors: make(map[string][]*dns.DNSKEY),
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		if err := store.Add(line); err != nil {
			return nil, fmt.Errorf("failed to load trust anchor: %w", err)
		}
	}

	if len(store.anchors) == 0 {
		return nil, fmt.Errorf("no DNSKEY trust anchors found in '%s'", path)
	}

	return store, nil
}

// Add parses one DNSKEY record string and adds it to the store.
// Non-DNSKEY records are ignored.
func (s *TrustAnchorStore) Add(anchor string) error {
	rr, err := dns.NewRR(anchor)
	if err != nil {
		return fmt.Errorf("can't parse trust anchor: %w", err)
	}

	key, ok := rr.(*dns.DNSKEY)
	if !ok {
		return nil
	}

	zone := strings.ToLower(key.Header().Name)
	s.anchors[zone] = append(s.anchors[zone], key)

	return nil
}

// HasTrustAnchor returns true if an anchor is configured for the zone
func (s *TrustAnchorStore) HasTrustAnchor(zone string) bool {
	return len(s.anchors[strings.ToLower(dns.Fqdn(zone))]) > 0
}

// Match reports whether any of the passed keys equals one of the
// configured anchors for the zone
func (s *TrustAnchorStore) Match(zone string, keys []*dns.DNSKEY) bool {
	for _, anchor := range s.anchors[strings.ToLower(dns.Fqdn(zone))] {
		for _, key := range keys {
			if key.PublicKey == anchor.PublicKey &&
				key.Algorithm == anchor.Algorithm &&
				key.Flags == anchor.Flags {
				return true
			}
		}
	}

	return false
}
