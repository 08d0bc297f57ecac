package domain

import "time"

// KeyMoment marks a notable event in the transcript for post-session review.
type KeyMoment struct {
	At          time.Time `json:"at"`
	Description string    `json:"description"`
}

// PerformanceMetrics is the end-of-session performance report. All sub-scores
// are in [0,100]; Overall is their unweighted mean.
type PerformanceMetrics struct {
	SessionID           string                     `json:"session_id"`
	Duration            time.Duration              `json:"duration"`
	ScriptAdherence     float64                    `json:"script_adherence"`
	ObjectionHandling   float64                    `json:"objection_handling"`
	Rapport             float64                    `json:"rapport"`
	Closing             float64                    `json:"closing"`
	Overall             float64                    `json:"overall"`
	Strengths           []string                   `json:"strengths"`
	Improvements        []string                   `json:"improvements"`
	KeyMoments          []KeyMoment                `json:"key_moments"`
	ObjectionBreakdown  map[ObjectionCategory]bool `json:"objection_breakdown"`
	RecommendedTraining []string                   `json:"recommended_training"`
}
