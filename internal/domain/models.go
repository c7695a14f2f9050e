package domain

import "time"

// Medicine is one unit of parsing work as submitted by the caller. NM is the
// free-text descriptor, VPID the caller's correlation key.
// An empty NM is not rejected here: the upstream decides what it can parse,
// and an unparseable descriptor becomes that item's failure, not the batch's.
type Medicine struct {
	Name string `json:"NM"`
	VPID string `json:"VPID"`
}

// ParsedFields holds the structured attributes extracted from a medicine
// descriptor. Duration is only populated for patches.
type ParsedFields struct {
	Name        string `json:"name"`
	Strength    string `json:"strength"`
	Formulation string `json:"formulation"`
	Duration    string `json:"duration,omitempty"`
}

// ErrorKind classifies a per-item extraction failure.
type ErrorKind string

const (
	ErrorKindTimeout             ErrorKind = "TIMEOUT"
	ErrorKindUpstreamInvalid     ErrorKind = "UPSTREAM_INVALID_RESPONSE"
	ErrorKindUpstreamUnavailable ErrorKind = "UPSTREAM_UNAVAILABLE"
)

// ItemError is the terminal failure recorded for a single batch item.
type ItemError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ParseOutcome is the tagged per-item result: exactly one of Fields or Error
// is set.
type ParseOutcome struct {
	VPID         string
	OriginalName string
	Fields       *ParsedFields
	Error        *ItemError
}

// OK reports whether the item was parsed successfully.
func (o *ParseOutcome) OK() bool {
	return o.Error == nil
}

// BatchResult is the ordered outcome list, index-aligned with the submitted
// medicines.
type BatchResult []ParseOutcome

// BatchStatus classifies a completed batch.
type BatchStatus int

const (
	BatchAllSucceeded BatchStatus = iota
	BatchPartial
	BatchAllFailed
)

// Status classifies the batch as full success, partial success, or total
// failure.
func (r BatchResult) Status() BatchStatus {
	succeeded := 0
	for i := range r {
		if r[i].OK() {
			succeeded++
		}
	}
	switch succeeded {
	case len(r):
		return BatchAllSucceeded
	case 0:
		return BatchAllFailed
	default:
		return BatchPartial
	}
}

// AdmissionDecision is the result of rate-limit admission for one request.
// RetryAfter is the time remaining in the current window when denied.
type AdmissionDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}
