package response

// Flash is a one-shot message carried to the next request in a cookie
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// LoginStatus is the body of GET /login
type LoginStatus struct {
	Authenticated bool   `json:"authenticated"`
	Login         string `json:"login,omitempty"`
	Flash         *Flash `json:"flash,omitempty"`
}

// Health is the body of GET /healthz
type Health struct {
	Status string `json:"status"`
}
