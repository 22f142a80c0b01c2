package models

import "encoding/json"

type SampleStatus string

const (
	SampleNotFetched SampleStatus = "not_fetched"
	SampleFailed     SampleStatus = "failed"
	SampleOK         SampleStatus = "ok"
)

// Sample is a single USD price observation. Err and Raw are diagnostic
// metadata and never influence the computation.
type Sample struct {
	Status SampleStatus    `json:"status"`
	Value  float64         `json:"-"`
	Err    string          `json:"error,omitempty"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

func OKSample(v float64, raw []byte) Sample {
	return Sample{Status: SampleOK, Value: v, Raw: raw}
}

func FailedSample(err error, raw []byte) Sample {
	s := Sample{Status: SampleFailed, Raw: raw}
	if err != nil {
		s.Err = err.Error()
	}
	return s
}

func NotFetchedSample(err error) Sample {
	s := Sample{Status: SampleNotFetched}
	if err != nil {
		s.Err = err.Error()
	}
	return s
}

func (s Sample) OK() bool { return s.Status == SampleOK }

// Ptr returns the value or nil when the sample is unavailable, which
// serializes as JSON null.
func (s Sample) Ptr() *float64 {
	if !s.OK() {
		return nil
	}
	v := s.Value
	return &v
}
