package checkout

// Result codes returned by the payments, details and status endpoints.
const (
	ResultAuthorised = "authorised"
	ResultRefused    = "refused"
	ResultPending    = "pending"
	ResultCancelled  = "cancelled"
	ResultError      = "error"
	ResultReceived   = "received"
)

// StatusResponse is the answer of the status-polling endpoint. Payload is the
// detail blob to submit back once the status is terminal.
type StatusResponse struct {
	ResultCode string `json:"resultCode"`
	Payload    string `json:"payload,omitempty"`
}

// IsFinal reports whether no further polling should occur for this response.
// Only pending and received are non-terminal.
func (s StatusResponse) IsFinal() bool {
	switch s.ResultCode {
	case ResultPending, ResultReceived:
		return false
	default:
		return true
	}
}
