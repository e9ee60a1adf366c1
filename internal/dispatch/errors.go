package dispatch

import "fmt"

// Kind classifies a dispatch failure by the lifecycle state it happened in.
type Kind int

const (
	KindValidation Kind = iota + 1 // bad or missing request fields
	KindGeneration                 // PDF layout, styled API or remote service failure
	KindDelivery                   // mail transport failure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindGeneration:
		return "generation"
	case KindDelivery:
		return "delivery"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by Dispatch for every expected failure. Message is safe
// to show to clients; Err is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string // offending request fields, validation only
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dispatch: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("dispatch: %s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
