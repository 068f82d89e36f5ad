package models

import "time"

type ClassSession struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Instructor  string    `json:"instructor"`
	StartsAt    time.Time `json:"starts_at"`
	DurationMin int       `json:"duration_min"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
}
