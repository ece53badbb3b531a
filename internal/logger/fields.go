package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldDocumentID identifies the document being processed.
	FieldDocumentID = "document_id"

	// FieldJobID identifies the extraction job.
	FieldJobID = "job_id"

	// FieldClaimID identifies a draft claim.
	FieldClaimID = "claim_id"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Standard metric fields attached at emit time.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldStatus is the HTTP status code.
	FieldStatus = "status"

	// FieldCount is a generic count field.
	FieldCount = "count"

	// FieldSize is the data size in bytes.
	FieldSize = "size"
)
