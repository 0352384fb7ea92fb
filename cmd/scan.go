package cmd

import (
	"os"

	"github.com/dnsweep/dnsweep/config"
	"github.com/dnsweep/dnsweep/log"
	"github.com/dnsweep/dnsweep/metrics"
	"github.com/dnsweep/dnsweep/scan"
	"github.com/dnsweep/dnsweep/storage"
	"github.com/dnsweep/dnsweep/util"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var workerCount uint

func newScanCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "scan <domain_file> <trust_anchor_file>",
		Args:  cobra.ExactArgs(2),
		Short: "scan all domains from the newline delimited list",
		Run:   startScan,
	}

	c.Flags().UintVar(&workerCount, "workers", 0, "number of scan workers, overrides the config value")

	return c
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(newScanCommand())
}

func startScan(_ *cobra.Command, args []string) {
	cfg = config.NewConfig(configPath)
	log.ConfigureLogger(cfg.Log)

	if cfg.Prometheus.Enable {
		metrics.Start(cfg.Prometheus.Listen, cfg.Prometheus.Path)
	}

	domainFile, err := os.Open(args[0])
	util.FatalOnError("can't open domain list: ", err)

	defer func() {
		util.LogOnError("can't close domain list: ", domainFile.Close())
	}()

	anchors, err := scan.NewTrustAnchorStore(args[1])
	util.FatalOnError("can't load trust anchors: ", err)

	store, err := storage.NewDatabaseStore(cfg.Database.Type, cfg.Database.Target)
	util.FatalOnError("can't open database: ", err)

	parsers, err := scan.ParsersFor(cfg.Scanner.RecordTypes)
	util.FatalOnError("can't configure record parsers: ", err)

	opts := scan.Options{
		Attempts:           cfg.DNS.Attempts,
		Forwarder:          cfg.DNS.Forwarder,
		ResolverConfigFile: cfg.DNS.ResolverConfig,
	}

	workers := cfg.Scanner.Workers
	if workerCount > 0 {
		workers = workerCount
	}

	pool := scan.NewWorkerPool(workers, cfg.Scanner.QueueSize, parsers, store, opts,
		func() (scan.Resolver, error) {
			return scan.NewResolver(opts, anchors)
		})

	count, err := scan.NewDispatcher(pool).Run(domainFile)
	util.FatalOnError("scan failed: ", err)

	log.Log().Infof("scanned %d domains (run %s)", count, pool.RunID())
}
