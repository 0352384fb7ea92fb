package metrics

import (
	"net/http"
	"time"

	"github.com/dnsweep/dnsweep/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//nolint:gochecknoglobals
var reg = prometheus.NewRegistry()

// RegisterMetric registers prometheus collector
func RegisterMetric(c prometheus.Collector) {
	_ = reg.Register(c)
}

// Start exposes the registry on the given address and registers the
// event listeners which feed the scan metrics
func Start(listenAddr, path string) {
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	_ = reg.Register(collectors.NewGoCollector())

	registerEventListeners()

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.PrefixedLog("metrics").Infof("serving metrics on %s%s", listenAddr, path)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.PrefixedLog("metrics").Errorf("metrics server failed: %v", err)
		}
	}()
}
