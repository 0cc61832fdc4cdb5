package types

import "encoding/json"

type ResultsResponse struct {
	Success bool     `json:"success"`
	Results []Record `json:"results"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Envelope is the outcome of one invocation. It serializes as either a
// ResultsResponse or an ErrorResponse, never a mix of the two.
type Envelope struct {
	StatusCode int
	Success    bool
	Results    []Record
	Error      string
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Success {
		results := e.Results
		if results == nil {
			results = []Record{}
		}
		return json.Marshal(ResultsResponse{Success: true, Results: results})
	}
	return json.Marshal(ErrorResponse{Success: false, Error: e.Error})
}
