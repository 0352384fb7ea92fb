package scan

import (
	"strings"
	"time"

	"github.com/dnsweep/dnsweep/storage"
	"github.com/dnsweep/dnsweep/util"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// metadata gives access to the DNSSEC metadata of one answer packet:
// RRSIG records from the answer section and NSEC/NSEC3 denial records
// from the authority and additional sections.
type metadata struct {
	msg    *dns.Msg
	rrType uint16
}

func newMetadata(msg *dns.Msg, rrType uint16) *metadata {
	return &metadata{msg: msg, rrType: rrType}
}

// rrsigs returns all RRSIG records from the answer section
func (m *metadata) rrsigs() []*dns.RRSIG {
	var sigs []*dns.RRSIG

	for _, rr := range m.msg.Answer {
		if sig, ok := rr.(*dns.RRSIG); ok {
			sigs = append(sigs, sig)
		}
	}

	return sigs
}

// denials returns all NSEC and NSEC3 records from the authority and
// additional sections
func (m *metadata) denials() []dns.RR {
	var result []dns.RR

	for _, section := range [][]dns.RR{m.msg.Ns, m.msg.Extra} {
		for _, rr := range section {
			switch rr.(type) {
			case *dns.NSEC, *dns.NSEC3:
				result = append(result, rr)
			}
		}
	}

	return result
}

// storeRRSIGs persists each RRSIG in its own transaction. A failure of
// one signature row does not prevent the remaining ones.
func (m *metadata) storeRRSIGs(ctx *rowContext, writer *storage.Writer, logger *logrus.Entry) {
	for _, sig := range m.rrsigs() {
		signature, err := signatureBytes(sig)
		if err != nil {
			logger.Errorf("failed to decode RRSIG of %s: %v", ctx.domain, err)

			continue
		}

		row := &storage.SignatureRecord{
			RunID:         ctx.runID,
			Domain:        ctx.domain,
			TTL:           sig.Header().Ttl,
			RRType:        dns.TypeToString[m.rrType],
			Algorithm:     sig.Algorithm,
			Labels:        sig.Labels,
			OriginalTTL:   sig.OrigTtl,
			SigExpiration: time.Unix(int64(sig.Expiration), 0).UTC(),
			SigInception:  time.Unix(int64(sig.Inception), 0).UTC(),
			KeyTag:        sig.KeyTag,
			SignerName:    util.CanonicalDomain(sig.SignerName),
			Signature:     signature,
		}

		if err := writer.Insert(row); err != nil {
			logger.Errorf("failed to store RRSIG of %s: %v", ctx.domain, err)
		}
	}
}

// storeDenials persists NSEC/NSEC3 denial of existence metadata, one row
// per record, each its own transaction
func (m *metadata) storeDenials(ctx *rowContext, writer *storage.Writer, logger *logrus.Entry) {
	for _, rr := range m.denials() {
		row := &storage.DenialRecord{
			RunID:  ctx.runID,
			Domain: ctx.domain,
			RRType: dns.TypeToString[m.rrType],
			Owner:  util.CanonicalDomain(rr.Header().Name),
		}

		switch v := rr.(type) {
		case *dns.NSEC:
			row.Kind = "nsec"
			row.NextDomain = util.CanonicalDomain(v.NextDomain)
			row.TypeBitmap = typeBitmapString(v.TypeBitMap)
		case *dns.NSEC3:
			row.Kind = "nsec3"
			row.NextDomain = v.NextDomain
			row.TypeBitmap = typeBitmapString(v.TypeBitMap)
		}

		if err := writer.Insert(row); err != nil {
			logger.Errorf("failed to store %s of %s: %v", row.Kind, ctx.domain, err)
		}
	}
}

func typeBitmapString(bitmap []uint16) string {
	names := make([]string, len(bitmap))
	for i, t := range bitmap {
		names[i] = dns.TypeToString[t]
	}

	return strings.Join(names, " ")
}
