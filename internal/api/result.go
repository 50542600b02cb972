package api

import (
	"encoding/json"
	"fmt"
)

// Result is the two-shape outcome every operation returns across the
// boundary: {"success": true, ...payload} or {"success": false, "error": msg}.
type Result struct {
	Success bool
	Payload interface{}
	Err     string
}

// Success wraps a payload. The payload must marshal to a JSON object.
func Success(payload interface{}) Result {
	return Result{Success: true, Payload: payload}
}

// Failure wraps an error message.
func Failure(err error) Result {
	return Result{Err: err.Error()}
}

// MarshalJSON flattens the payload fields next to "success".
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{false, r.Err})
	}

	fields := map[string]json.RawMessage{}
	if r.Payload != nil {
		data, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}
	fields["success"] = json.RawMessage("true")
	return json.Marshal(fields)
}
