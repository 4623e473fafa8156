package services

// InvalidInputError reports a request payload with the wrong shape.
type InvalidInputError struct{ Message string }

func (e *InvalidInputError) Error() string { return e.Message }

// ProviderError wraps any failure returned by the generative model provider.
// Its message is the underlying failure's message.
type ProviderError struct{ Err error }

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "provider error"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }
