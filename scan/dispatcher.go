package scan

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dnsweep/dnsweep/evt"
	"github.com/dnsweep/dnsweep/log"

	"github.com/hako/durafmt"
	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// Dispatcher seeds the worker pool's bounded queue from a newline
// delimited domain list and waits for the queue to drain
type Dispatcher struct {
	pool   *WorkerPool
	logger *logrus.Entry
}

func NewDispatcher(pool *WorkerPool) *Dispatcher {
	return &Dispatcher{
		pool:   pool,
		logger: log.PrefixedLog("dispatcher"),
	}
}

// Run starts the pool, enqueues every valid domain from the reader and
// blocks until all of them have been processed. It returns the number of
// enqueued domains.
func (d *Dispatcher) Run(domains io.Reader) (int, error) {
	start := time.Now()

	if err := d.pool.Start(); err != nil {
		return 0, err
	}

	evt.Bus().Publish(evt.ScanStarted, d.pool.RunID())

	count := 0
	scanner := bufio.NewScanner(domains)

	for scanner.Scan() {
		domain := strings.TrimSpace(scanner.Text())
		if domain == "" {
			continue
		}

		if _, ok := dns.IsDomainName(domain); !ok {
			d.logger.Warnf("skipping invalid domain '%s'", domain)

			continue
		}

		d.pool.Enqueue(domain)
		count++
	}

	readErr := scanner.Err()

	d.pool.Drain()

	if readErr != nil {
		return count, fmt.Errorf("can't read domain list: %w", readErr)
	}

	d.logger.Infof("run %s: scan of %d domains took %s",
		d.pool.RunID(), count, durafmt.Parse(time.Since(start).Round(time.Second)))

	return count, nil
}
