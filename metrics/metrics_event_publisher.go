package metrics

import (
	"fmt"

	"github.com/dnsweep/dnsweep/evt"
	"github.com/dnsweep/dnsweep/util"

	"github.com/prometheus/client_golang/prometheus"
)

// registerEventListeners registers all metric handlers by the event bus
func registerEventListeners() {
	registerScanEventListeners()
	registerStorageEventListeners()
}

func registerScanEventListeners() {
	scanRuns := scanRunsCounter()
	domainsScanned := domainsScannedCounter()
	recordsProcessed := recordsProcessedCounter()
	scanFailures := scanFailuresCounter()

	RegisterMetric(scanRuns)
	RegisterMetric(domainsScanned)
	RegisterMetric(recordsProcessed)
	RegisterMetric(scanFailures)

	subscribe(evt.ScanStarted, func(runID string) {
		scanRuns.Inc()
	})

	subscribe(evt.ScanDomainScanned, func(domain string) {
		domainsScanned.Inc()
	})

	subscribe(evt.ScanRecordsProcessed, func(rrType string, count int) {
		recordsProcessed.WithLabelValues(rrType).Add(float64(count))
	})

	subscribe(evt.ScanFailed, func(rrType string) {
		scanFailures.WithLabelValues(rrType).Inc()
	})
}

func registerStorageEventListeners() {
	rowsStored := rowsStoredCounter()
	rowErrors := rowErrorsCounter()

	RegisterMetric(rowsStored)
	RegisterMetric(rowErrors)

	subscribe(evt.ScanRowStored, func(table string) {
		rowsStored.WithLabelValues(table).Inc()
	})

	subscribe(evt.ScanRowError, func(table string) {
		rowErrors.WithLabelValues(table).Inc()
	})
}

func scanRunsCounter() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dnsweep_scan_runs_total",
			Help: "Number of started scan batches",
		},
	)
}

func domainsScannedCounter() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dnsweep_domains_scanned_total",
			Help: "Number of domains processed by the worker pool",
		},
	)
}

func recordsProcessedCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnsweep_records_processed_total",
			Help: "Number of resource records processed, by RR type",
		}, []string{"type"},
	)
}

func scanFailuresCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnsweep_scan_failures_total",
			Help: "Number of failed (domain, RR type) resolutions, by RR type",
		}, []string{"type"},
	)
}

func rowsStoredCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnsweep_rows_stored_total",
			Help: "Number of rows committed to the database, by table",
		}, []string{"table"},
	)
}

func rowErrorsCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnsweep_row_errors_total",
			Help: "Number of failed row commits, by table",
		}, []string{"table"},
	)
}

func subscribe(topic string, fn interface{}) {
	util.FatalOnError(fmt.Sprintf("can't subscribe topic '%s'", topic), evt.Bus().Subscribe(topic, fn))
}
