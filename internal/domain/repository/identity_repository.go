package repository

import (
	"context"

	"securehire/internal/domain/entity"
)

type IdentityRepository interface {
	GetByID(ctx context.Context, id string) (*entity.IdentityRecord, error)
	// ListByRole returns up to limit records of role after cursor ("" starts from the top).
	ListByRole(ctx context.Context, role entity.Role, cursor string, limit int) (*entity.IdentityPage, error)
}
