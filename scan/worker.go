package scan

import (
	"fmt"
	"sync"

	"github.com/dnsweep/dnsweep/evt"
	"github.com/dnsweep/dnsweep/log"
	"github.com/dnsweep/dnsweep/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ResolverFactory creates the resolver handle owned by one worker
type ResolverFactory func() (Resolver, error)

// WorkerPool is a fixed set of long-lived workers pulling domains from a
// bounded queue. Every worker owns exactly one resolver handle and one
// storage writer for its whole lifetime; the queue is the only shared
// synchronization point.
type WorkerPool struct {
	workers uint
	parsers []*Parser
	store   *storage.Store
	opts    Options
	factory ResolverFactory
	queue   chan string
	wg      sync.WaitGroup
	runID   string
	logger  *logrus.Entry
}

// NewWorkerPool creates a pool of the given size with a bounded task
// queue. The enqueueing producer blocks while the queue is full.
func NewWorkerPool(
	workers, queueSize uint,
	parsers []*Parser,
	store *storage.Store,
	opts Options,
	factory ResolverFactory,
) *WorkerPool {
	return &WorkerPool{
		workers: workers,
		parsers: parsers,
		store:   store,
		opts:    opts,
		factory: factory,
		queue:   make(chan string, queueSize),
		runID:   uuid.NewString(),
		logger:  log.PrefixedLog("worker"),
	}
}

// RunID identifies this scan batch on every stored row
func (p *WorkerPool) RunID() string {
	return p.runID
}

// Start builds one resolver per worker and launches the workers. A
// resolver that can't be created aborts the start before any scanning.
func (p *WorkerPool) Start() error {
	for i := uint(0); i < p.workers; i++ {
		resolver, err := p.factory()
		if err != nil {
			return fmt.Errorf("can't create resolver for worker %d: %w", i, err)
		}

		p.wg.Add(1)

		go p.work(i, resolver)
	}

	return nil
}

// Enqueue adds one domain to the task queue, blocking while the queue
// is full
func (p *WorkerPool) Enqueue(domain string) {
	p.queue <- domain
}

// Drain closes the queue and blocks until every enqueued domain has been
// fully processed. There is no timeout and no partial shutdown path.
func (p *WorkerPool) Drain() {
	close(p.queue)
	p.wg.Wait()
}

func (p *WorkerPool) work(id uint, resolver Resolver) {
	defer p.wg.Done()

	writer := p.store.Writer()
	logger := p.logger.WithField("worker", id)

	for domain := range p.queue {
		p.scanDomain(domain, resolver, writer, logger)
		evt.Bus().Publish(evt.ScanDomainScanned, domain)
	}
}

// scanDomain runs every registered parser against the domain in the
// configured order. A failing parser is logged and does not stop the
// remaining RR types, a fully failing domain does not stop the worker.
func (p *WorkerPool) scanDomain(domain string, resolver Resolver, writer *storage.Writer, logger *logrus.Entry) {
	for _, parser := range p.parsers {
		count, err := parser.FetchAndStore(p.runID, domain, resolver, p.opts, writer)
		if err != nil {
			logger.Errorf("failed to scan domain %s with %s: %v", domain, parser.TypeName(), err)
			evt.Bus().Publish(evt.ScanFailed, parser.TypeName())

			continue
		}

		evt.Bus().Publish(evt.ScanRecordsProcessed, parser.TypeName(), count)
	}
}
