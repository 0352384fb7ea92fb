package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// ScanStarted fires when a scan batch starts. Parameter: run id
	ScanStarted = "scan:started"

	// ScanDomainScanned fires after all configured RR types were processed for one domain. Parameter: domain
	ScanDomainScanned = "scan:domainScanned"

	// ScanRecordsProcessed fires after one (domain, RR type) pair was processed. Parameters: RR type name, record count
	ScanRecordsProcessed = "scan:recordsProcessed"

	// ScanFailed fires if a (domain, RR type) pair could not be resolved. Parameter: RR type name
	ScanFailed = "scan:failed"

	// ScanRowStored fires after one row was committed. Parameter: table name
	ScanRowStored = "scan:rowStored"

	// ScanRowError fires if a row could not be committed. Parameter: table name
	ScanRowError = "scan:rowError"
)

// nolint:gochecknoglobals
var evtBus = EventBus.New()

// Bus returns the global event bus
func Bus() EventBus.Bus {
	return evtBus
}
