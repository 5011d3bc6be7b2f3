package mock

import (
	"context"

	"github.com/fwojciec/telcheck"
)

var _ telcheck.RunService = (*RunService)(nil)

// RunService is a mock implementation of telcheck.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *telcheck.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*telcheck.Run, error)
	FindRunsFn    func(ctx context.Context, filter telcheck.RunFilter) ([]*telcheck.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *telcheck.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*telcheck.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter telcheck.RunFilter) ([]*telcheck.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
