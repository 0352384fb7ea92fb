package config

import (
	"fmt"
	"os"

	"github.com/dnsweep/dnsweep/log"

	"github.com/creasty/defaults"
	"github.com/hashicorp/go-multierror"
	"github.com/miekg/dns"
	"gopkg.in/yaml.v2"
)

// Config is the main process configuration, loaded once at startup and
// immutable afterwards
type Config struct {
	Log        log.Config       `yaml:"log"`
	DNS        DNSConfig        `yaml:"dns"`
	Database   DatabaseConfig   `yaml:"database"`
	Scanner    ScannerConfig    `yaml:"scanner"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
}

// DNSConfig contains the parameters governing resolution and retry
type DNSConfig struct {
	// Attempts is the number of resolution attempts for transient failures
	Attempts uint `yaml:"attempts" default:"3"`
	// Forwarder is an optional address of a validating resolver, format host[:port]
	Forwarder string `yaml:"forwarder"`
	// ResolverConfig is an optional resolv.conf style file used to pick
	// nameservers when no forwarder is configured
	ResolverConfig string `yaml:"resolverConfig"`
}

// DatabaseConfig declares the storage target
type DatabaseConfig struct {
	// Type is one of mysql or postgresql
	Type string `yaml:"type" default:"postgresql"`
	// Target is the driver specific connection string (DSN)
	Target string `yaml:"target"`
}

// ScannerConfig declares worker pool size, queue capacity and the
// ordered set of scanned RR types
type ScannerConfig struct {
	Workers     uint     `yaml:"workers" default:"16"`
	QueueSize   uint     `yaml:"queueSize" default:"5000"`
	RecordTypes []string `yaml:"recordTypes" default:"[\"A\",\"AAAA\",\"DNSKEY\"]"`
}

// PrometheusConfig contains the config values for prometheus
type PrometheusConfig struct {
	Enable bool   `yaml:"enable" default:"false"`
	Listen string `yaml:"listen" default:":4000"`
	Path   string `yaml:"path" default:"/metrics"`
}

//nolint:gochecknoglobals
var databaseTypes = map[string]bool{
	"mysql":      true,
	"postgresql": true,
}

// NewConfig reads the config file from the given path. Any error is fatal:
// the process must not proceed to scanning with a broken configuration.
func NewConfig(path string) Config {
	cfg := Config{}
	if err := defaults.Set(&cfg); err != nil {
		log.Log().Fatal("can't apply default values: ", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Log().Fatal("can't read config file: ", err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		log.Log().Fatal("wrong file structure: ", err)
	}

	if err := cfg.validate(); err != nil {
		log.Log().Fatal("invalid configuration: ", err)
	}

	return cfg
}

func (c *Config) validate() error {
	var result *multierror.Error

	if err := log.ValidLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, err)
	}

	if err := log.ValidFormat(c.Log.Format); err != nil {
		result = multierror.Append(result, err)
	}

	if c.DNS.Attempts == 0 {
		result = multierror.Append(result, fmt.Errorf("dns.attempts must be a positive integer"))
	}

	if !databaseTypes[c.Database.Type] {
		result = multierror.Append(result, fmt.Errorf("database.type must be one of mysql, postgresql, got '%s'",
			c.Database.Type))
	}

	if c.Database.Target == "" {
		result = multierror.Append(result, fmt.Errorf("database.target is required"))
	}

	if c.Scanner.Workers == 0 {
		result = multierror.Append(result, fmt.Errorf("scanner.workers must be a positive integer"))
	}

	if c.Scanner.QueueSize == 0 {
		result = multierror.Append(result, fmt.Errorf("scanner.queueSize must be a positive integer"))
	}

	if len(c.Scanner.RecordTypes) == 0 {
		result = multierror.Append(result, fmt.Errorf("scanner.recordTypes must not be empty"))
	}

	for _, t := range c.Scanner.RecordTypes {
		if _, known := dns.StringToType[t]; !known {
			result = multierror.Append(result, fmt.Errorf("unknown record type '%s'", t))
		}
	}

	return result.ErrorOrNil()
}
