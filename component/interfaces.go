package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents an instance with a start/stop lifecycle, such as a
// connection pool or a background worker built by the container.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information logged when a component is
// tracked.
type Description struct {
	// Type categorizes the component: "database", "cache", "worker", etc.
	Type string
	// Details is a human-readable one-liner, e.g. "localhost:5432 pool=25".
	Details string
}

// Describable is optionally implemented by Components to self-report what
// they are and how they are configured.
type Describable interface {
	Describe() Description
}
