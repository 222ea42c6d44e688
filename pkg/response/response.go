package response

// Response is the result record every API operation returns: ok with a
// value, or an error kind with details.
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	ErrorKind  string      `json:"error_kind,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response carrying the taxonomy kind and
// the human-readable detail
func Error(statusCode int, kind, detail string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		ErrorKind:  kind,
		Error:      detail,
	}
}
