package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSource names the frame source (video path or frame directory).
	FieldSource = "source"
	// FieldFrame is the 1-based frame number within a source.
	FieldFrame = "frame"
	// FieldRunID identifies one processing run of a source.
	FieldRunID = "run_id"
	// FieldMask names a mask file.
	FieldMask = "mask"
	// FieldPlayer is the 1-based player number.
	FieldPlayer = "player"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldProgressPercent reports completion of a source.
	FieldProgressPercent = "progress_percent"
)

// Event types for classification anomalies.
const (
	EventItemStateUnexpected = "item_state_unexpected"
	EventRaceAborted         = "race_aborted"
	EventRaceUnfinished      = "race_unfinished"
	EventMaskNameUnparsed    = "mask_name_unparsed"
	EventFrameSkipped        = "frame_skipped"
	EventSourceOpenFailed    = "source_open_failed"
)

// Event types for maintenance actions.
const (
	EventRunPruned = "run_pruned"
)
