package scan

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// ValidationState classifies the DNSSEC validation outcome of one answer.
// It is stored verbatim on every row produced from that answer.
type ValidationState string

const (
	StateSecure   ValidationState = "secure"
	StateInsecure ValidationState = "insecure"
	StateBogus    ValidationState = "bogus"
)

const retryDelay = 500 * time.Millisecond

// errPermanentServfail marks the SERVFAIL outcome which must not be retried
var errPermanentServfail = errors.New("permanent SERVFAIL")

// StateOf maps a resolution result to its validation state
func StateOf(result *Result) ValidationState {
	switch {
	case result.Secure:
		return StateSecure
	case result.Bogus:
		return StateBogus
	default:
		return StateInsecure
	}
}

// fetchWithRetry resolves one (domain, RR type) pair under the retry
// policy. Transient resolver errors are retried up to opts.Attempts times.
// A SERVFAIL response is permanent: it is never retried and yields a nil
// result without error, so the caller records zero records instead of
// aborting the domain.
func fetchWithRetry(
	domain string, rrType, rrClass uint16,
	resolver Resolver, opts Options, logger *logrus.Entry,
) (*Result, error) {
	var result *Result

	err := retry.Do(
		func() error {
			r, err := resolver.Resolve(domain, rrType, rrClass)
			if err != nil {
				return err
			}

			if r.Rcode == dns.RcodeServerFailure && !r.Bogus {
				return retry.Unrecoverable(errPermanentServfail)
			}

			result = r

			return nil
		},
		retry.Attempts(opts.Attempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debugf("attempt %d to resolve %s %s failed: %v",
				n+1, dns.TypeToString[rrType], domain, err)
		}),
	)

	if errors.Is(err, errPermanentServfail) {
		logger.Warnf("permanent SERVFAIL: domain %s type %s", domain, dns.TypeToString[rrType])

		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("resolving %s for %s: %w", dns.TypeToString[rrType], domain, err)
	}

	logger.Debugf("domain %s type %s: havedata %t, rcode %s",
		domain, dns.TypeToString[rrType], result.HaveData, dns.RcodeToString[result.Rcode])

	return result, nil
}
