package log

import (
	"maps"
	"slices"
)

// Field names shared by every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldPath          = "path"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldFormat        = "format"
	FieldRows          = "rows"
	FieldBytes         = "bytes"
	FieldWindowDays    = "window_days"
	FieldTransactionID = "transaction_id"
	FieldTxType        = "transaction_type"
	FieldAmount        = "amount"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReport    = "report"
	ComponentAnalytics = "analytics"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
)

const (
	OpCreate    = "create"
	OpRead      = "read"
	OpList      = "list"
	OpAggregate = "aggregate"
	OpExport    = "export"
	OpPublish   = "publish"
	OpParse     = "parse"
	OpRender    = "render"
)

// LogFields collects attributes for one record.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithUser(userID string) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithError records err's message; nil is ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithArtifact describes a rendered report: its format, row count and size.
func (f LogFields) WithArtifact(format string, rows, bytes int) LogFields {
	f[FieldFormat] = format
	f[FieldRows] = rows
	f[FieldBytes] = bytes
	return f
}

// WithWindow records the look-back window of a query in days.
func (f LogFields) WithWindow(days int) LogFields {
	f[FieldWindowDays] = days
	return f
}

// ToSlice flattens the fields into slog key/value pairs, sorted by key so
// text output is stable.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for _, k := range slices.Sorted(maps.Keys(f)) {
		out = append(out, k, f[k])
	}
	return out
}
