package response

import "github.com/yourname/sleepwell/internal"

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta, Error: nil}
}

func Error(err *internal.AppError) APIResponse {
	return APIResponse{Error: err}
}

func NewAppError(status int, msg string) APIResponse {
	return Error(internal.NewAppError(status, msg))
}
