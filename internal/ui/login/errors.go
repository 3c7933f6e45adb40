package login

import (
	"errors"
	"fmt"
)

var errInvalidEmail = errors.New("enter a valid email address")

func errRequired(field string) error {
	return fmt.Errorf("%s is required", field)
}
