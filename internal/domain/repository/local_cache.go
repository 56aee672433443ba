package repository

import (
	"context"
	"time"

	"securehire/internal/domain/entity"
)

// KeyValueStore is the raw persisted key/value layer. Missing keys return ok=false.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// LocalCache is the typed view over KeyValueStore. Nothing else reads or writes raw keys.
type LocalCache interface {
	ProfileComplete(ctx context.Context, role entity.Role, uid string) (complete bool, ok bool)
	SetProfileComplete(ctx context.Context, role entity.Role, uid string, complete bool) error
	InvalidateProfileComplete(ctx context.Context, role entity.Role, uid string) error

	Contacts(ctx context.Context, role entity.Role, uid string) []*entity.Contact
	SaveContacts(ctx context.Context, role entity.Role, uid string, contacts []*entity.Contact) error

	CompanyID(ctx context.Context, uid string) (string, bool)
	SetCompanyID(ctx context.Context, uid, companyID string) error
}
