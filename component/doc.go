// Package component manages the start/stop lifecycle of instances built by
// the container.
//
// Instances implementing Component are collected in a Registry, either by
// hand or by installing the Tracker interceptor on a container. The
// registry starts them in registration order, which for tracked
// components is construction order, and stops them in reverse.
//
// # Interfaces
//
//   - Component: lifecycle interface (Start/Stop/Health)
//   - Describable: optional self-description logged at registration
package component
