package util

import (
	"strings"

	"github.com/dnsweep/dnsweep/log"

	"github.com/miekg/dns"
)

// CanonicalDomain returns the lower-cased domain name without the trailing dot
func CanonicalDomain(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".")
}

// NewMsgWithQuestion creates a new DNS message with a single question
func NewMsgWithQuestion(question string, qType uint16) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(question), qType)

	return msg
}

// NewMsgWithAnswer creates a new DNS message with answer records parsed from
// zone file format lines
func NewMsgWithAnswer(answers ...string) (*dns.Msg, error) {
	msg := new(dns.Msg)

	for _, answer := range answers {
		rr, err := dns.NewRR(answer)
		if err != nil {
			return nil, err
		}

		msg.Answer = append(msg.Answer, rr)
	}

	return msg, nil
}

// FatalOnError logs the message only if error is not nil and exits the program execution
func FatalOnError(message string, err error) {
	if err != nil {
		log.Log().Fatal(message, err)
	}
}

// LogOnError logs the message only if error is not nil
func LogOnError(message string, err error) {
	if err != nil {
		log.Log().Error(message, err)
	}
}
