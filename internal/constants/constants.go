package constants

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Credentials
const (
	MinPasswordLength = 6
)

// Context keys set by middleware
const (
	ContextKeyUserID    = "auth.userID"
	ContextKeyEmail     = "auth.email"
	ContextKeyRole      = "auth.role"
	ContextKeyRequestID = "request_id"
)
