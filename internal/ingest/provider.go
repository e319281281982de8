package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	SessionsInserted int `json:"sessions_inserted"`
	SessionsSkipped  int `json:"sessions_skipped"`
	SessionsInvalid  int `json:"sessions_invalid,omitempty"`

	BeatsReceived int64 `json:"beats_received"`
	BeatsInserted int64 `json:"beats_inserted"`
	BeatsValid    int64 `json:"beats_valid"`

	Message string `json:"message,omitempty"`
}

// Add accumulates another result into r.
func (r *Result) Add(o *Result) {
	if o == nil {
		return
	}
	r.SessionsReceived += o.SessionsReceived
	r.SessionsInserted += o.SessionsInserted
	r.SessionsSkipped += o.SessionsSkipped
	r.SessionsInvalid += o.SessionsInvalid
	r.BeatsReceived += o.BeatsReceived
	r.BeatsInserted += o.BeatsInserted
	r.BeatsValid += o.BeatsValid
}
