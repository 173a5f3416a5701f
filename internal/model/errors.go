package model

import "errors"

// Error kinds shared across the availability engine. Callers match them with errors.Is;
// producers wrap them with fmt.Errorf("...: %w", ErrX) so the cause stays attached.
var (
	// ErrSetup means a collaborator could not be initialized. Fatal to the current run.
	ErrSetup = errors.New("setup failed")

	// ErrPersistence means the snapshot or subscription store rejected a write.
	// The prior snapshot remains authoritative.
	ErrPersistence = errors.New("persistence failed")

	// ErrValidation means a day or hour was not in canonical form.
	ErrValidation = errors.New("invalid input")

	// ErrTransition means the calendar could not be advanced to the next day.
	ErrTransition = errors.New("day transition failed")

	// ErrDelivery means the messaging collaborator rejected a message.
	ErrDelivery = errors.New("delivery failed")
)
