package scan

import (
	"fmt"

	"github.com/dnsweep/dnsweep/log"
	"github.com/dnsweep/dnsweep/storage"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

// rowContext carries the per (domain, RR type) call values shared by all
// rows written from one answer
type rowContext struct {
	runID  string
	domain string
	etld   string
	state  ValidationState
}

// rowDecoder turns one resource record into a storage row
type rowDecoder func(ctx *rowContext, rr dns.RR) (storage.Row, error)

// Parser scans one RR type for a domain and stores the decoded rows.
// Variants differ only in their RR type tag and row decoder; new RR types
// are added by registering another Parser, the dispatch loop stays
// untouched.
type Parser struct {
	rrType  uint16
	rrClass uint16
	decode  rowDecoder
	logger  *logrus.Entry
}

func newParser(rrType uint16, decode rowDecoder) *Parser {
	return &Parser{
		rrType:  rrType,
		rrClass: dns.ClassINET,
		decode:  decode,
		logger:  log.PrefixedLog("parser"),
	}
}

// NewAParser scans A records
func NewAParser() *Parser {
	return newParser(dns.TypeA, decodeAddress)
}

// NewAAAAParser scans AAAA records. The decoding logic is identical to A,
// only the RR type tag differs.
func NewAAAAParser() *Parser {
	return newParser(dns.TypeAAAA, decodeAddress)
}

// NewDNSKEYParser scans DNSKEY records and decomposes RSA public keys
func NewDNSKEYParser() *Parser {
	return newParser(dns.TypeDNSKEY, decodeDNSKEY)
}

// NewMXParser scans MX records
func NewMXParser() *Parser {
	return newParser(dns.TypeMX, decodeMX)
}

//nolint:gochecknoglobals
var parserConstructors = map[uint16]func() *Parser{
	dns.TypeA:      NewAParser,
	dns.TypeAAAA:   NewAAAAParser,
	dns.TypeDNSKEY: NewDNSKEYParser,
	dns.TypeMX:     NewMXParser,
}

// ParsersFor builds the ordered parser list for the configured RR type
// names. The order is fixed: every domain is scanned with the parsers in
// exactly this sequence.
func ParsersFor(typeNames []string) ([]*Parser, error) {
	parsers := make([]*Parser, 0, len(typeNames))

	for _, name := range typeNames {
		rrType, known := dns.StringToType[name]
		if !known {
			return nil, fmt.Errorf("unknown record type '%s'", name)
		}

		construct, ok := parserConstructors[rrType]
		if !ok {
			return nil, fmt.Errorf("no parser registered for record type '%s'", name)
		}

		parsers = append(parsers, construct())
	}

	return parsers, nil
}

// TypeName returns the textual RR type this parser scans
func (p *Parser) TypeName() string {
	return dns.TypeToString[p.rrType]
}

// FetchAndStore resolves the parser's RR type for the domain and stores
// one row per decoded record plus the RRSIG/NSEC/NSEC3 metadata of the
// same answer. It returns the number of records of the target type found.
// A decode or store failure of a single record is logged and does not
// affect the remaining records: every row is its own commit unit.
func (p *Parser) FetchAndStore(
	runID, domain string,
	resolver Resolver, opts Options,
	writer *storage.Writer,
) (int, error) {
	result, err := fetchWithRetry(domain, p.rrType, p.rrClass, resolver, opts, p.logger)
	if err != nil {
		return 0, err
	}

	if result == nil || !result.HaveData {
		return 0, nil
	}

	msg, err := decodePacket(result.Packet)
	if err != nil {
		return 0, fmt.Errorf("domain %s type %s: %w", domain, p.TypeName(), err)
	}

	etld, _ := publicsuffix.EffectiveTLDPlusOne(domain)
	ctx := &rowContext{
		runID:  runID,
		domain: domain,
		etld:   etld,
		state:  StateOf(result),
	}

	rrs := recordsOfType(msg.Answer, p.rrType)

	for _, rr := range rrs {
		row, err := p.decode(ctx, rr)
		if err != nil {
			p.logger.Errorf("failed to decode %s record of %s: %v", p.TypeName(), domain, err)

			continue
		}

		if err := writer.Insert(row); err != nil {
			p.logger.Errorf("failed to store %s record of %s: %v", p.TypeName(), domain, err)
		}
	}

	meta := newMetadata(msg, p.rrType)
	meta.storeRRSIGs(ctx, writer, p.logger)
	meta.storeDenials(ctx, writer, p.logger)

	return len(rrs), nil
}

func decodeAddress(ctx *rowContext, rr dns.RR) (storage.Row, error) {
	var address string

	switch v := rr.(type) {
	case *dns.A:
		address = v.A.String()
	case *dns.AAAA:
		address = v.AAAA.String()
	default:
		return nil, fmt.Errorf("unexpected record type %T", rr)
	}

	return &storage.AddressRecord{
		RunID:         ctx.runID,
		State:         string(ctx.state),
		Domain:        ctx.domain,
		EffectiveTLDP: ctx.etld,
		TTL:           rr.Header().Ttl,
		Address:       address,
	}, nil
}

func decodeDNSKEY(ctx *rowContext, rr dns.RR) (storage.Row, error) {
	key, ok := rr.(*dns.DNSKEY)
	if !ok {
		return nil, fmt.Errorf("unexpected record type %T", rr)
	}

	pubkey, err := publicKeyBytes(key)
	if err != nil {
		return nil, err
	}

	row := &storage.KeyRecord{
		RunID:         ctx.runID,
		State:         string(ctx.state),
		Domain:        ctx.domain,
		EffectiveTLDP: ctx.etld,
		TTL:           rr.Header().Ttl,
		Flags:         key.Flags,
		Protocol:      key.Protocol,
		Algorithm:     key.Algorithm,
	}

	if !IsRSAAlgorithm(key.Algorithm) {
		row.OtherKey = pubkey

		return row, nil
	}

	rsa, err := DecomposeRSA(pubkey)
	if err != nil {
		return nil, fmt.Errorf("malformed %s key: %w", RSAAlgorithmName(key.Algorithm), err)
	}

	row.RSAExponent = &rsa.Exponent
	row.RSAModulus = rsa.Modulus
	row.OtherKey = rsa.OtherKey

	return row, nil
}

func decodeMX(ctx *rowContext, rr dns.RR) (storage.Row, error) {
	mx, ok := rr.(*dns.MX)
	if !ok {
		return nil, fmt.Errorf("unexpected record type %T", rr)
	}

	return &storage.MXRecord{
		RunID:         ctx.runID,
		State:         string(ctx.state),
		Domain:        ctx.domain,
		EffectiveTLDP: ctx.etld,
		TTL:           rr.Header().Ttl,
		Preference:    mx.Preference,
		Exchange:      mx.Mx,
	}, nil
}
