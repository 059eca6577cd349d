package response

import "encoding/json"

// Status is the envelope every JSON endpoint answers with: {"status": false}
// for any handled failure and {"status": "<text>"} otherwise. Auth failures
// and malformed payloads share the failure form on purpose.
type Status struct {
	Value string
	OK    bool
}

// Failure is the generic failure envelope.
func Failure() Status { return Status{} }

// Success wraps a status text.
func Success(v string) Status { return Status{Value: v, OK: true} }

// MarshalJSON renders the status field as false or the bare string value.
func (s Status) MarshalJSON() ([]byte, error) {
	type alias struct {
		Status any `json:"status"`
	}
	a := alias{Status: any(false)}
	if s.OK {
		a.Status = s.Value
	}
	return json.Marshal(a)
}
