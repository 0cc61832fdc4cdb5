package upstream

import "fmt"

const snippetLength = 200

// TransportError means the upstream could not be reached at all.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer from the upstream.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("Upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("Upstream returned %d: %s", e.StatusCode, snippet(e.Body))
}

// FormatError is a successful answer that is not a usable JSON document.
type FormatError struct {
	ContentType string
	Message     string
	Err         error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func snippet(body string) string {
	runes := []rune(body)
	if len(runes) <= snippetLength {
		return body
	}
	return string(runes[:snippetLength])
}
