package usecase

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when the query is blank after trimming.
var ErrEmptyQuery = errors.New("query is empty")

// NoMatchError means no snapshot row matched the query.
type NoMatchError struct {
	Query string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no security matches %q", e.Query)
}

// NoDataError means nothing usable could be gathered for the query.
type NoDataError struct {
	Query string
	Err   error
}

func (e *NoDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no data available for %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("no data available for %q", e.Query)
}

func (e *NoDataError) Unwrap() error { return e.Err }

// DeadlineExceededError means the request deadline fired before a usable result existed.
type DeadlineExceededError struct {
	Stage string
	Err   error
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("deadline exceeded during %s: %v", e.Stage, e.Err)
}

func (e *DeadlineExceededError) Unwrap() error { return e.Err }

func IsNoMatch(err error) bool {
	var e *NoMatchError
	return errors.As(err, &e)
}

func IsNoData(err error) bool {
	var e *NoDataError
	return errors.As(err, &e)
}

func IsDeadlineExceeded(err error) bool {
	var e *DeadlineExceededError
	return errors.As(err, &e)
}
