// Package behaviors holds reference behaviors for the mediator pipeline.
//
// A typical chain, outermost first, is Recovery, Tracing, Metrics, Logging, RateLimit and then
// request validation. Every behavior here is safe to share between concurrent sends.
package behaviors
