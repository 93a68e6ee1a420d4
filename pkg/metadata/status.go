package metadata

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusReserved  Status = "RESERVED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusDeleted   Status = "DELETED"
)

func NewStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusCompleted, StatusCancelled, StatusDeleted:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
