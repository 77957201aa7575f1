package votes

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller supplied identifier or limit is unusable.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFetchFailure is matched by every transport failure, including non-2xx responses.
	ErrFetchFailure = errors.New("fetch failure")
	// ErrMalformedResponse is returned when a listing payload does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError is a non-2xx response.
type FetchError struct {
	Status int
	Url    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP error %d", e.Status)
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailure
}

// ParseError describes a vote block that could not be parsed and was skipped.
type ParseError struct {
	Index int
	Err   error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("vote block %d: %s", e.Index, e.Err.Error())
}

func (e ParseError) Unwrap() error {
	return e.Err
}
