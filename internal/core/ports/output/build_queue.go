package ports

import (
	"context"

	"github.com/google/uuid"

	"franklin-api/internal/core/domain"
)

// BuildQueue accepts build jobs for asynchronous execution.
type BuildQueue interface {
	// Enqueue hands a job to the build workers. Returns domain.ErrQueueFull
	// when no capacity is available.
	Enqueue(ctx context.Context, job domain.BuildJob) error
}

// BuildReporter is how build workers report progress back to the core.
type BuildReporter interface {
	ReportStatus(ctx context.Context, buildID uuid.UUID, status domain.BuildStatus, detail string) error
}
