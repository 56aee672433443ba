package entity

import "time"

type LogbookKind string

const (
	LogbookCheckIn  LogbookKind = "check_in"
	LogbookCheckOut LogbookKind = "check_out"
)

// LogbookEntry records a guard arriving at or leaving a job site after scanning its QR code.
type LogbookEntry struct {
	ID          string      `json:"id,omitempty"`
	JobID       string      `json:"job_id"`
	JobSeekerID string      `json:"job_seeker_id"`
	Kind        LogbookKind `json:"kind"`
	Nonce       string      `json:"nonce"`
	Latitude    *float64    `json:"latitude,omitempty"`
	Longitude   *float64    `json:"longitude,omitempty"`
	RecordedAt  time.Time   `json:"recorded_at"`
}

// CheckInCode is what a job's QR poster encodes.
type CheckInCode struct {
	JobID string `json:"job_id"`
	Nonce string `json:"nonce"`
	URL   string `json:"url,omitempty"`
	PNG   []byte `json:"-"`
}
