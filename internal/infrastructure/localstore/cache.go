package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/pkg/logger"
)

// schemaVersion is bumped whenever the shape of a cached value changes. Entries written
// under another version read as absent.
const schemaVersion = 1

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// Cache is the typed, versioned view over a KeyValueStore.
type Cache struct {
	store      repository.KeyValueStore
	profileTTL time.Duration
}

func NewCache(store repository.KeyValueStore, profileTTL time.Duration) *Cache {
	return &Cache{store: store, profileTTL: profileTTL}
}

var _ repository.LocalCache = (*Cache)(nil)

func profileCompleteKey(role entity.Role, uid string) string {
	return fmt.Sprintf("profile_complete:%s:%s", role, uid)
}

func contactsKey(role entity.Role, uid string) string {
	return fmt.Sprintf("contacts:%s:%s", role, uid)
}

func companyIDKey(uid string) string {
	return "company_id:" + uid
}

func (c *Cache) get(ctx context.Context, key string, out interface{}) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn("Local cache read %s failed: %v", key, err)
		return false
	}
	if !ok {
		return false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Version != schemaVersion {
		logger.Debug("Discarding local cache entry %s written by another schema", key)
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		logger.Warn("Local cache entry %s is corrupt: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Version: schemaVersion, Data: data})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw, ttl)
}

func (c *Cache) ProfileComplete(ctx context.Context, role entity.Role, uid string) (bool, bool) {
	var complete bool
	if !c.get(ctx, profileCompleteKey(role, uid), &complete) {
		return false, false
	}
	return complete, true
}

func (c *Cache) SetProfileComplete(ctx context.Context, role entity.Role, uid string, complete bool) error {
	return c.set(ctx, profileCompleteKey(role, uid), complete, c.profileTTL)
}

func (c *Cache) InvalidateProfileComplete(ctx context.Context, role entity.Role, uid string) error {
	return c.store.Delete(ctx, profileCompleteKey(role, uid))
}

func (c *Cache) Contacts(ctx context.Context, role entity.Role, uid string) []*entity.Contact {
	var contacts []*entity.Contact
	if !c.get(ctx, contactsKey(role, uid), &contacts) {
		return nil
	}
	return contacts
}

func (c *Cache) SaveContacts(ctx context.Context, role entity.Role, uid string, contacts []*entity.Contact) error {
	return c.set(ctx, contactsKey(role, uid), contacts, 0)
}

func (c *Cache) CompanyID(ctx context.Context, uid string) (string, bool) {
	var id string
	if !c.get(ctx, companyIDKey(uid), &id) || id == "" {
		return "", false
	}
	return id, true
}

func (c *Cache) SetCompanyID(ctx context.Context, uid, companyID string) error {
	return c.set(ctx, companyIDKey(uid), companyID, 0)
}
