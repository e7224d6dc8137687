package reservation

// Kind classifies a domain error so the transport layer can map it to a
// stable status code without inspecting messages.
type Kind int

const (
	KindNotFound Kind = iota
	KindAccessDenied
	KindInvalidOperation
	KindInvalidInput
)

// Error is a caller-input failure raised by the lifecycle engine. Anything
// else (store unavailable, broken row) surfaces as a plain wrapped error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func notFound(msg string) error         { return &Error{Kind: KindNotFound, Message: msg} }
func accessDenied(msg string) error     { return &Error{Kind: KindAccessDenied, Message: msg} }
func invalidOperation(msg string) error { return &Error{Kind: KindInvalidOperation, Message: msg} }
func invalidInput(msg string) error     { return &Error{Kind: KindInvalidInput, Message: msg} }
