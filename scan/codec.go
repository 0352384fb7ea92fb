package scan

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/miekg/dns"
)

// RSA capable DNSKEY algorithm IDs with their display names
// (RFC 2537, RFC 3110, RFC 5155, RFC 5702)
//
//nolint:gochecknoglobals
var rsaAlgorithms = map[uint8]string{
	dns.RSAMD5:           "RSA/MD5",
	dns.RSASHA1:          "RSA/SHA-1",
	dns.RSASHA1NSEC3SHA1: "RSASHA1-NSEC3-SHA1",
	dns.RSASHA256:        "RSA/SHA-256",
	dns.RSASHA512:        "RSA/SHA-512",
}

// IsRSAAlgorithm returns true for DNSKEY algorithm IDs carrying an RSA
// public key in RFC 2537/3110 wire encoding
func IsRSAAlgorithm(algo uint8) bool {
	_, ok := rsaAlgorithms[algo]

	return ok
}

// RSAAlgorithmName returns the display name of an RSA DNSKEY algorithm ID
func RSAAlgorithmName(algo uint8) string {
	return rsaAlgorithms[algo]
}

// RSAKey is the decomposition of an RSA DNSKEY public key. Either
// Exponent+Modulus or OtherKey (with the -1 exponent sentinel) is
// populated, never both: exponents wider than 63 bits do not fit the
// storage field, so the whole key blob is kept opaque instead.
type RSAKey struct {
	Exponent int64
	Modulus  []byte
	OtherKey []byte
}

// DecomposeRSA splits an RSA public key blob into exponent and modulus
// per RFC 2537/3110:
//
//	first byte nonzero: it is the exponent length, exponent starts at offset 1
//	first byte zero:    the next two bytes (big endian) are the exponent
//	                    length, exponent starts at offset 3
//
// The modulus is the remainder with leading zero bytes stripped.
func DecomposeRSA(pubkey []byte) (*RSAKey, error) {
	if len(pubkey) == 0 {
		return nil, errors.New("empty public key")
	}

	var expLen, expOffset int

	if pubkey[0] > 0 {
		expLen = int(pubkey[0])
		expOffset = 1
	} else {
		if len(pubkey) < 3 {
			return nil, errors.New("truncated exponent length field")
		}

		expLen = int(pubkey[1])<<8 | int(pubkey[2])
		expOffset = 3

		if expLen == 0 {
			return nil, errors.New("zero exponent length")
		}
	}

	if expOffset+expLen > len(pubkey) {
		return nil, fmt.Errorf("exponent length %d exceeds key data", expLen)
	}

	exponent := new(big.Int).SetBytes(pubkey[expOffset : expOffset+expLen])
	if !exponent.IsInt64() {
		// does not fit the rsa_exp storage field: keep the raw blob
		return &RSAKey{
			Exponent: -1,
			OtherKey: pubkey,
		}, nil
	}

	return &RSAKey{
		Exponent: exponent.Int64(),
		Modulus:  bytes.TrimLeft(pubkey[expOffset+expLen:], "\x00"),
	}, nil
}

// decodePacket unpacks a raw wire format answer
func decodePacket(packet []byte) (*dns.Msg, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(packet); err != nil {
		return nil, fmt.Errorf("failed to parse DNS packet: %w", err)
	}

	return msg, nil
}

// recordsOfType returns the records of the wanted RR type from a section,
// in answer order
func recordsOfType(section []dns.RR, rrType uint16) []dns.RR {
	var result []dns.RR

	for _, rr := range section {
		if rr.Header().Rrtype == rrType {
			result = append(result, rr)
		}
	}

	return result
}

// publicKeyBytes decodes the base64 public key field of a DNSKEY record
// into its wire format bytes
func publicKeyBytes(key *dns.DNSKEY) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("malformed DNSKEY public key: %w", err)
	}

	return raw, nil
}

// signatureBytes decodes the base64 signature field of an RRSIG record
func signatureBytes(sig *dns.RRSIG) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sig.Signature)
	if err != nil {
		return nil, fmt.Errorf("malformed RRSIG signature: %w", err)
	}

	return raw, nil
}
