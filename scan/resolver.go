package scan

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dnsweep/dnsweep/log"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

const (
	// ednsUDPSize is the EDNS0 UDP buffer size
	ednsUDPSize = 4096

	defaultDNSPort  = "53"
	defaultResolv   = "/etc/resolv.conf"
	upstreamTimeout = 10 * time.Second
)

// Result is the outcome of one DNSSEC validated lookup for one
// (domain, RR type, class) triple. It is owned exclusively by the parser
// invocation that requested it.
type Result struct {
	Rcode    int
	HaveData bool
	Secure   bool
	Bogus    bool
	// Packet is the raw wire format answer
	Packet []byte
}

// Resolver performs one DNSSEC validated lookup per call. Implementations
// are not required to be safe for concurrent use: every worker owns its
// own resolver instance.
type Resolver interface {
	Resolve(domain string, rrType, rrClass uint16) (*Result, error)
}

// validatingResolver queries a validating forwarder with the DO bit set.
// The AD flag of the response signals a secure validation chain. A
// SERVFAIL answer is re-tried with checking disabled: data coming back
// then means the zone failed validation and is bogus.
type validatingResolver struct {
	target    string
	udpClient *dns.Client
	tcpClient *dns.Client
	anchors   *TrustAnchorStore
	logger    *logrus.Entry
}

// NewResolver creates a resolver handle talking to the configured
// forwarder (or the first nameserver of the resolver config file)
func NewResolver(opts Options, anchors *TrustAnchorStore) (Resolver, error) {
	target, err := forwarderAddress(opts)
	if err != nil {
		return nil, err
	}

	return &validatingResolver{
		target: target,
		udpClient: &dns.Client{
			Net:     "udp",
			Timeout: upstreamTimeout,
			UDPSize: ednsUDPSize,
		},
		tcpClient: &dns.Client{
			Net:     "tcp",
			Timeout: upstreamTimeout,
		},
		anchors: anchors,
		logger:  log.PrefixedLog("resolver"),
	}, nil
}

func forwarderAddress(opts Options) (string, error) {
	if opts.Forwarder != "" {
		return withDefaultPort(opts.Forwarder), nil
	}

	path := opts.ResolverConfigFile
	if path == "" {
		path = defaultResolv
	}

	servers, err := nameserversFromFile(path)
	if err != nil {
		return "", err
	}

	if len(servers) == 0 {
		return "", fmt.Errorf("no nameserver entries in '%s'", path)
	}

	return withDefaultPort(servers[0]), nil
}

// nameserversFromFile reads "nameserver <addr>" entries in resolv.conf syntax
func nameserversFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't read resolver config file: %w", err)
	}
	defer file.Close()

	var servers []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}

	return servers, scanner.Err()
}

func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}

	return net.JoinHostPort(addr, defaultDNSPort)
}

func (r *validatingResolver) Resolve(domain string, rrType, rrClass uint16) (*Result, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), rrType)
	msg.Question[0].Qclass = rrClass
	msg.SetEdns0(ednsUDPSize, true)

	resp, err := r.exchange(msg)
	if err != nil {
		return nil, fmt.Errorf("can't resolve %s %s: %w", dns.TypeToString[rrType], domain, err)
	}

	result := &Result{
		Rcode:  resp.Rcode,
		Secure: resp.AuthenticatedData,
	}

	if resp.Rcode == dns.RcodeServerFailure {
		if cdResp := r.retryCheckingDisabled(msg); cdResp != nil {
			// the unvalidated answer exists, so the SERVFAIL was a
			// validation failure
			resp = cdResp
			result = &Result{Rcode: resp.Rcode, Bogus: true}
		}
	}

	result.HaveData = resp.Rcode == dns.RcodeSuccess && len(resp.Answer) > 0

	if rrType == dns.TypeDNSKEY && result.HaveData && !result.Bogus && !r.anchorsMatch(domain, resp) {
		result.Secure = false
		result.Bogus = true
	}

	packet, err := resp.Pack()
	if err != nil {
		return nil, fmt.Errorf("can't pack answer for %s: %w", domain, err)
	}

	result.Packet = packet

	return result, nil
}

func (r *validatingResolver) exchange(msg *dns.Msg) (*dns.Msg, error) {
	resp, _, err := r.udpClient.Exchange(msg, r.target)
	if err != nil {
		return nil, err
	}

	if resp.Truncated {
		resp, _, err = r.tcpClient.Exchange(msg, r.target)
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

func (r *validatingResolver) retryCheckingDisabled(msg *dns.Msg) *dns.Msg {
	cd := msg.Copy()
	cd.Id = dns.Id()
	cd.CheckingDisabled = true

	resp, err := r.exchange(cd)
	if err != nil || resp.Rcode != dns.RcodeSuccess {
		return nil
	}

	r.logger.Debugf("query %s succeeded with checking disabled, marking bogus", msg.Question[0].Name)

	return resp
}

// anchorsMatch cross-checks a DNSKEY answer for a zone with a configured
// trust anchor against the anchor keys
func (r *validatingResolver) anchorsMatch(domain string, resp *dns.Msg) bool {
	name := dns.Fqdn(strings.ToLower(domain))
	if !r.anchors.HasTrustAnchor(name) {
		return true
	}

	var keys []*dns.DNSKEY

	for _, rr := range resp.Answer {
		if key, ok := rr.(*dns.DNSKEY); ok {
			keys = append(keys, key)
		}
	}

	if r.anchors.Match(name, keys) {
		return true
	}

	r.logger.Warnf("DNSKEY answer for %s does not match any configured trust anchor", domain)

	return false
}
