package schema

import (
	"errors"
	"fmt"
)

// Kind classifies a bootstrap failure.
type Kind int

const (
	// KindConfiguration means the existence check could not talk to the
	// space, which almost always points at a wrong space id or token.
	KindConfiguration Kind = iota + 1
	// KindInitialization covers every other failure.
	KindInitialization
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInitialization:
		return "initialization"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	// ErrConfiguration matches every *Error of KindConfiguration.
	ErrConfiguration = errors.New("unable to initialize content management: " +
		"check the management.space_id and management.token settings")
	// ErrInitialization matches every *Error of KindInitialization.
	ErrInitialization = errors.New("unable to initialize content management")
)

// Error is returned by the bootstrapper. Op names the step that failed
// ("check", "create", "publish") and Err is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.sentinel().Error(), e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	if e.Kind == KindConfiguration {
		return ErrConfiguration
	}
	return ErrInitialization
}

func configurationError(op string, err error) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Err: err}
}

func initializationError(op string, err error) *Error {
	return &Error{Kind: KindInitialization, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
