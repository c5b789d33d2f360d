package model

import "time"

// Prediction is the outcome of scoring one URL.
type Prediction struct {
	URL                 string     `json:"url"`
	IsPhishing          bool       `json:"is_phishing"`
	PhishingProbability float64    `json:"phishing_probability"`
	Features            FeatureSet `json:"features,omitempty"`
}

// ProbeResult is the outcome of the single HTTP probe made during extraction.
// Elapsed is meaningful only when OK is true.
type ProbeResult struct {
	OK      bool
	Elapsed time.Duration
	Err     error // cause of failure, for logging only
}

// Seconds returns the elapsed time in seconds, or Sentinel when the probe failed.
func (r ProbeResult) Seconds() float64 {
	if !r.OK {
		return Sentinel
	}
	return r.Elapsed.Seconds()
}
