package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Chat
	FieldRoom     = "room"
	FieldUserName = "user_name"
	FieldClientID = "client_id"
	FieldMsgType  = "msg_type"

	// AI
	FieldModel          = "model"
	FieldMode           = "mode"
	FieldClassification = "classification"

	// Service
	FieldService = "service"
)
