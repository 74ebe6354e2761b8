package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Acquisition errors
	ErrMalformedReply ErrorCode = "malformed_reply"
	ErrDeviceIO       ErrorCode = "device_io_error"
	ErrConnectionLost ErrorCode = "connection_lost"
	ErrNotAlive       ErrorCode = "device_not_alive"

	// Device errors
	ErrDeviceNotFound   ErrorCode = "device_not_found"
	ErrIdentityMismatch ErrorCode = "device_identity_mismatch"
	ErrPortOpenFailed   ErrorCode = "port_open_failed"

	// Recording errors
	ErrSinkUnavailable ErrorCode = "sink_unavailable"
	ErrBadLogFormat    ErrorCode = "bad_log_format"

	// Telemetry errors
	ErrInvalidDBPath ErrorCode = "invalid_db_path"
	ErrStorageInit   ErrorCode = "storage_init_failed"
	ErrStorageAccess ErrorCode = "storage_access_failed"
	ErrStorageClose  ErrorCode = "storage_close_failed"

	// Publishing errors
	ErrBrokerUnavailable ErrorCode = "broker_unavailable"
	ErrPublishFailed     ErrorCode = "publish_failed"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:          "Internal error occurred",
	ErrInvalidArgument:   "Invalid argument provided",
	ErrAlreadyRunning:    "Another instance is already running",
	ErrInvalidConfig:     "Invalid configuration",
	ErrBindFlags:         "Failed to bind flags",
	ErrReadConfig:        "Failed to read configuration",
	ErrInvalidInterval:   "Invalid interval value",
	ErrInvalidLogLevel:   "Invalid log level",
	ErrMalformedReply:    "Malformed device reply",
	ErrDeviceIO:          "Device I/O error",
	ErrConnectionLost:    "Connection to device lost",
	ErrNotAlive:          "Device is not alive",
	ErrDeviceNotFound:    "No matching device found",
	ErrIdentityMismatch:  "Device identity mismatch",
	ErrPortOpenFailed:    "Failed to open serial port",
	ErrSinkUnavailable:   "Log sink unavailable",
	ErrBadLogFormat:      "Unrecognized log file format",
	ErrInvalidDBPath:     "Invalid telemetry database path",
	ErrStorageInit:       "Failed to initialize sample storage",
	ErrStorageAccess:     "Failed to access sample storage",
	ErrStorageClose:      "Failed to close sample storage",
	ErrBrokerUnavailable: "MQTT broker unavailable",
	ErrPublishFailed:     "Failed to publish state",
	ErrInitFailed:        "Initialization failed",
	ErrShutdownFailed:    "Shutdown failed",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
