package repository

import (
	"context"

	"mindmend/internal/domain/model"
)

// ResponseCache stores composed responses keyed by the user message text.
// Get returns domain.ErrCacheMiss when nothing is stored.
type ResponseCache interface {
	Get(ctx context.Context, message string) (*model.TherapistResponse, error)
	Set(ctx context.Context, message string, resp *model.TherapistResponse) error
}
