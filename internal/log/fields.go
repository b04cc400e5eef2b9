package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldDashboardID = "dashboard_id"
	FieldRecordCount = "record_count"
	FieldEntryCount  = "entry_count"
	FieldVersion     = "version"
	FieldDBPath      = "db_path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentCodec   = "codec"
	ComponentManager = "manager"
	ComponentSheets  = "sheets"
	ComponentSweeper = "sweeper"
)

// Operations defines standard operation names
const (
	OpSave     = "save"
	OpLoad     = "load"
	OpClear    = "clear"
	OpCleanup  = "cleanup"
	OpExport   = "export"
	OpImport   = "import"
	OpClassify = "classify"
	OpSync     = "sync"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
