// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestlog persists one row per served HTTP request for the admin
// log view, the CSV export and the request counters in stats.
//
// Requests are never slowed or failed by logging: entries go through a bounded
// queue to a single writer goroutine, and a full queue drops the entry.
package requestlog

import "time"

// Entry is one served request.
type Entry struct {
	ID         int64     `json:"id"          db:"id"`
	Timestamp  time.Time `json:"timestamp"   db:"timestamp"`
	Method     string    `json:"method"      db:"method"`
	Path       string    `json:"path"        db:"path"`
	Endpoint   string    `json:"endpoint"    db:"endpoint"`
	StatusCode int       `json:"status_code" db:"status_code"`
	IPAddress  string    `json:"ip_address"  db:"ip_address"`
	UserAgent  string    `json:"user_agent"  db:"user_agent"`

	// ResponseTime is in seconds.
	ResponseTime float64 `json:"response_time" db:"response_time"`
}

// Counts summarizes the stored requests.
type Counts struct {
	Total   int64 `json:"total"   db:"total"`
	Get     int64 `json:"get"     db:"get_count"`
	Post    int64 `json:"post"    db:"post_count"`
	Success int64 `json:"success" db:"success_count"`
	Errors  int64 `json:"errors"  db:"error_count"`
}
