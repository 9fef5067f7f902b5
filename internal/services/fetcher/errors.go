package fetcher

import "fmt"

// FetchError reports that a source stayed unavailable after its retry budget.
type FetchError struct {
	Source   string
	Params   string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Params != "" {
		return fmt.Sprintf("fetch %s(%s) failed after %d attempt(s): %v", e.Source, e.Params, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.Source, e.Attempts, e.Err)
}

// Unwrap returns the last failure cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
