package entity

import "time"

type Job struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	PayRate     float64   `json:"pay_rate"`
	ShiftStart  time.Time `json:"shift_start"`
	ShiftEnd    time.Time `json:"shift_end"`
	Guards      int       `json:"guards_required"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	JobSeekerID string    `json:"job_seeker_id"`
	CoverNote   string    `json:"cover_note,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
