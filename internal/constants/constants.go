package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID    = "user_id"
	ContextKeyIdentity  = "identity"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"
)

const HeaderRequestID = "X-Request-ID"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Input limits
const (
	MinPasswordLength = 6
	MaxTitleLength    = 255
	MaxNotesLength    = 500
	MinScore          = 0
	MaxScore          = 100
)

// Analytics windows
const (
	PerformanceHistoryLimit = 12
	RecentTasksLimit        = 5
	TopPerformersLimit      = 5
)
