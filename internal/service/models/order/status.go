package order

import (
	"database/sql/driver"
	"errors"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusShipped Status = "shipped"
)

var ErrInvalidStatus = errors.New("invalid status")

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus accepts the stored values and the labels used by the shop front-end.
func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusPending.String(), "En cours":
		return StatusPending, nil
	case StatusShipped.String(), "Livrée":
		return StatusShipped, nil
	default:
		return "", ErrInvalidStatus
	}
}
