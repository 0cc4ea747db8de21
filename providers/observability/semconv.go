package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- Lease Attributes ---

const (
	// AttrLeaseID is the lease UUID
	AttrLeaseID = "lease.id"

	// AttrLeaseName is the lease name as printed by the CLI
	AttrLeaseName = "lease.name"

	// AttrLeaseCount is the number of leases in a run
	AttrLeaseCount = "lease.count"

	// AttrFieldCount is the number of shell fields tokenized from one dump
	AttrFieldCount = "shellvars.fields"

	// AttrReservationCount is the number of reservations decoded from one lease
	AttrReservationCount = "reservation.count"

	// AttrReservationRaw is a decoded reservation object re-encoded as JSON
	AttrReservationRaw = "reservation.raw"

	// AttrReservationAmount is the coerced integer amount of a reservation
	AttrReservationAmount = "reservation.amount"

	// AttrRepair tells whether the jsonrepair retry is enabled
	AttrRepair = "parse.repair"
)

// --- Warning Attributes ---

const (
	// AttrWarningKind classifies a recoverable problem (e.g. "object_decode")
	AttrWarningKind = "warning.kind"

	// AttrWarningCount is the number of warnings attached to one lease
	AttrWarningCount = "warning.count"

	// AttrLine is the 1-based dump line a tokenizer warning points at
	AttrLine = "shellvars.line"

	// AttrObjectIndex is the position of a failed reservation object
	AttrObjectIndex = "parse.index"

	// AttrField is the record field whose value failed to decode or coerce
	AttrField = "parse.field"
)

// --- Command Attributes ---

const (
	// AttrCommand is the external command being run
	AttrCommand = "command.name"

	// AttrCommandArgs is the argument list of the external command
	AttrCommandArgs = "command.args"

	// AttrOutputBytes is the size of the captured stdout
	AttrOutputBytes = "command.output_bytes"

	// AttrSource is where a dump was read from (file path or "stdin")
	AttrSource = "dump.source"
)

// --- General Attributes ---

const (
	// AttrDuration is the elapsed time of an operation
	AttrDuration = "duration"

	// AttrError is the error message
	AttrError = "error"

	// AttrStatus is the status of a span
	AttrStatus = "status"

	// AttrStatusDescription is the description attached to a span status
	AttrStatusDescription = "status.description"
)

// --- Span Names ---

const (
	// SpanLeaseList covers listing the lease ids
	SpanLeaseList = "lease.list"

	// SpanLeaseFetch covers fetching and parsing one lease
	SpanLeaseFetch = "lease.fetch"
)

// --- Event Names ---

const (
	// EventWarning is added to the active span for each recoverable problem
	EventWarning = "warning"
)

// --- Metric Names ---

const (
	// MetricWarnings counts recoverable parse problems
	MetricWarnings = "resflavors.warnings"

	// MetricLeasesFetched counts leases fetched, tagged by status
	MetricLeasesFetched = "resflavors.leases.fetched"

	// MetricFetchDuration records lease fetch duration in seconds
	MetricFetchDuration = "resflavors.lease.fetch.duration"
)
