/*
Package mediator provides a thin in-process mediator for requests and notifications.

A request is sent to exactly one handler through an ordered chain of behaviors and returns a
response. A notification is published to zero or more handlers, one after another.

Bindings are expected to be made once at startup. Behaviors run in registration order, the
first registered being the outermost: for behaviors [A, B] and handler H the observed order is
A before, B before, H, B after, A after.

A request type with no bound handler is a wiring defect; Send panics with a
*errors.ConfigurationError instead of returning an error.
*/
package mediator
