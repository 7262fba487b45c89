package logging

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Connection
	FieldConnID      = "conn_id"
	FieldRemoteAddr  = "remote_addr"
	FieldReason      = "reason"
	FieldSubscribers = "subscribers"
	FieldFrameSize   = "frame_size"
	FieldState       = "state"
	FieldURL         = "url"

	// Events
	FieldEventType = "event_type"
	FieldTool      = "tool"
	FieldChannel   = "channel"

	FieldService = "service"
)
