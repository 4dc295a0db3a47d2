package models

import "fmt"

// ExternalCallError wraps a failure of the entity store or the generation
// endpoint.
type ExternalCallError struct {
	Op  string
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

func External(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalCallError{Op: op, Err: err}
}
