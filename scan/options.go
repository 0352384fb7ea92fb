package scan

// Options carries the resolution parameters. It is loaded once at startup
// and shared read-only by all workers.
type Options struct {
	// Attempts is the number of resolution attempts for transient failures
	Attempts uint
	// Forwarder is the address of a validating resolver, host[:port].
	// Optional; when empty the nameservers from ResolverConfigFile or the
	// system resolv.conf are used.
	Forwarder string
	// ResolverConfigFile is an optional resolv.conf style file
	ResolverConfigFile string
}
