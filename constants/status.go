package constants

// RowStatus is the per-record classification outcome produced by the
// reconciliation engine. Rows never abort a batch; every row gets a status.
type RowStatus string

const (
	RowStatusNew              RowStatus = "NEW"             // accepted, will create a new entity
	RowStatusUpdate           RowStatus = "UPDATE"          // accepted, will replace an existing entry
	RowStatusDuplicate        RowStatus = "DUPLICATE_ROLL"  // roll number already taken
	RowStatusNotFound         RowStatus = "NOT_FOUND"       // attendance row with no matching user
	RowStatusNoAccess         RowStatus = "NO_ASSIGNMENT"   // outside the acting staff's assignments
	RowStatusGenerationFailed RowStatus = "ROLL_GEN_FAILED" // no roll number could be determined
	RowStatusMalformed        RowStatus = "MALFORMED"       // failed contract validation, dropped pre-reconcile
)

// Eligible reports whether a row with this status may be committed.
func (s RowStatus) Eligible() bool {
	return s == RowStatusNew || s == RowStatusUpdate
}

// FlowState is the import session state machine.
//
//	Upload -> Parsing -> Review -> (Committed | Cancelled)
//
// Parsing falls back to Upload on any whole-flow error. Committed and
// Cancelled are terminal.
type FlowState string

const (
	FlowUpload    FlowState = "UPLOAD"
	FlowParsing   FlowState = "PARSING"
	FlowReview    FlowState = "REVIEW"
	FlowCommitted FlowState = "COMMITTED"
	FlowCancelled FlowState = "CANCELLED"
)
