package caption

import "errors"

var ErrNoImage = errors.New("no image to describe")

// GenerationError wraps a failed call to the model: transport, quota, non-2xx
// status or a cancelled context.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generating content: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// InvalidResponseError means the model answered but not with the declared
// structure.
type InvalidResponseError struct {
	Reason string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	msg := "invalid model response: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}
