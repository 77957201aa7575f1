package chrono

import "time"

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	Now() time.Time
	Location() *time.Location
}

// StandardTime is the standard implementation of TimeAPI, parliament dates are
// interpreted in Brussels time.
type StandardTime struct {
	location *time.Location
}

func NewStandardTime() (StandardTime, error) {
	location, err := time.LoadLocation("Europe/Brussels")
	if err != nil {
		return StandardTime{}, err
	}
	return StandardTime{location: location}, nil
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardTime) Location() *time.Location {
	return s.location
}

// FixedTime is a TimeAPI that always returns the same instant.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At
}

func (f FixedTime) Location() *time.Location {
	return f.At.Location()
}
