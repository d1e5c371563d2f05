package model

import "time"

// Deal holds metadata inferred from a deal document.
type Deal struct {
	Name      string     `json:"name"`
	Owner     string     `json:"owner"`
	Industry  string     `json:"industry"`
	Value     float64    `json:"value,omitempty"`
	CloseDate *time.Time `json:"close_date,omitempty"`
	Stage     string     `json:"stage"`
}
