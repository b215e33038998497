package ledgersdk

import "errors"

// Envelope is the uniform result of every data-access operation above the
// HTTP client. Exactly one of Data or Error is meaningful; Errors is only set
// for validation failures.
type Envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Ok wraps data in a successful envelope.
func Ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Fail builds a failed envelope with a single message.
func Fail[T any](msg string) Envelope[T] {
	return Envelope[T]{Error: msg}
}

// failure converts err into a failed envelope. The message is taken from the
// API error body when there is one. A *RequestError always reports fallback;
// any other error reports its own text. withFields copies field-level
// validation errors across.
func failure[T any](err error, fallback string, withFields bool) Envelope[T] {
	env := Envelope[T]{Error: fallback}

	apiErr, ok := AsAPIError(err)
	if !ok {
		var reqErr *RequestError
		if err != nil && !errors.As(err, &reqErr) {
			env.Error = err.Error()
		}
		return env
	}

	if msg := apiErr.Message(); msg != "" {
		env.Error = msg
	}
	if withFields && apiErr.IsValidation() {
		env.Errors = apiErr.FieldErrors
	}
	return env
}
