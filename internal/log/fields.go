package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldUserID    = "user_id"
	FieldMonth     = "month"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Component names
const (
	ComponentHTTP    = "http"
	ComponentStore   = "storage"
	ComponentSummary = "summary"
	ComponentWorker  = "worker"
	ComponentAMQP    = "amqp"
	ComponentExport  = "export"
)
