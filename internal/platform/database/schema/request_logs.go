package schema

// RequestLogsTable represents the 'request_logs' table.
type RequestLogsTable struct {
	Table        string
	ID           string
	Timestamp    string
	Method       string
	Path         string
	Endpoint     string
	StatusCode   string
	IPAddress    string
	UserAgent    string
	ResponseTime string
}

// RequestLogs is the schema definition for request_logs.
var RequestLogs = RequestLogsTable{
	Table:        "request_logs",
	ID:           "id",
	Timestamp:    "timestamp",
	Method:       "method",
	Path:         "path",
	Endpoint:     "endpoint",
	StatusCode:   "status_code",
	IPAddress:    "ip_address",
	UserAgent:    "user_agent",
	ResponseTime: "response_time",
}

func (t RequestLogsTable) Columns() []any {
	return []any{t.ID, t.Timestamp, t.Method, t.Path, t.Endpoint, t.StatusCode, t.IPAddress, t.UserAgent, t.ResponseTime}
}
