package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldRunID     = "run_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Election fields
	FieldMethod     = "method"
	FieldSeats      = "seats"
	FieldRound      = "round"
	FieldCandidates = "candidates"
	FieldBallots    = "ballots"

	// Path fields
	FieldPath       = "path"
	FieldReportPath = "report_path"
)
