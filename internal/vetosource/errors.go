package vetosource

import (
	"errors"
	"fmt"
)

var ErrInvalidLanguage = errors.New("invalid language")

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("veto server status %d: %s", e.Status, e.Message)
}
