// Package component defines the lifecycle interfaces shared by
// long-lived clients such as an HTTP service.
//
// A Registry starts components in registration order, stops them in
// reverse and aggregates their health.
//
// # Interfaces
//
//   - Component: Core lifecycle interface (Start/Stop/Health)
//   - Describable: Self-description for summaries and logs
package component
