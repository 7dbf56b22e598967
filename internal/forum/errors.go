package forum

import "fmt"

// APIError is a response the server answered with a non-zero error code.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Msg)
}
