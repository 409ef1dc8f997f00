package events

import "time"

type ParseDegradedEvent struct {
	ID        string    `json:"id"`
	Side      string    `json:"side"`
	Field     string    `json:"field"`
	Raw       string    `json:"raw"`
	EventDate string    `json:"event_date"`
	Venue     string    `json:"venue"`
	Course    string    `json:"course"`
	Timestamp time.Time `json:"timestamp"`
}

type ComparedEvent struct {
	ID        string    `json:"id"`
	A         string    `json:"a"`
	B         string    `json:"b"`
	TotalRuns int       `json:"total_runs"`
	ScoreA    int       `json:"score_a"`
	ScoreB    int       `json:"score_b"`
	Ties      int       `json:"ties"`
	Timestamp time.Time `json:"timestamp"`
}
