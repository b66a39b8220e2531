package mediator

// Request is a message handled by exactly one handler that returns R.
// Concrete request types satisfy it by embedding Returns[R]:
//
//	type CreateRole struct {
//		mediator.Returns[result.Value[uuid.UUID]]
//		Name string
//	}
type Request[R any] interface {
	response() R
}

// Returns binds the response type R to a request type when embedded.
// It is zero-sized and carries no data.
type Returns[R any] struct{}

func (Returns[R]) response() (r R) { return r }

// Unit is the canonical response of a command that returns nothing.
// Commands use the same dispatch path as any other request.
type Unit struct{}

// Command is a request with no return value.
type Command = Request[Unit]

// Notification is a marker for messages fanned out to zero or more handlers.
// It has no response.
type Notification interface{}
