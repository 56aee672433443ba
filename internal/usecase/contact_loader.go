package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

const (
	DefaultContactPageSize   = 10
	DefaultEnrichConcurrency = 8
)

type LoaderConfig struct {
	PageSize          int
	EnrichConcurrency int
	ScrollThreshold   float64
}

func (c LoaderConfig) withDefaults() LoaderConfig {
	if c.PageSize <= 0 {
		c.PageSize = DefaultContactPageSize
	}
	if c.EnrichConcurrency <= 0 {
		c.EnrichConcurrency = DefaultEnrichConcurrency
	}
	if c.ScrollThreshold <= 0 {
		c.ScrollThreshold = DefaultScrollThreshold
	}
	return c
}

// LoaderDeps are the collaborators shared by every loader. Presence may be nil.
type LoaderDeps struct {
	Identities repository.IdentityRepository
	Directory  ProfileDirectory
	Cache      repository.LocalCache
	Presence   interface{ IsOnline(userID string) bool }
}

// BatchResult describes one FetchNextBatch call.
type BatchResult struct {
	Appended []*entity.Contact `json:"appended"`
	HasMore  bool              `json:"has_more"`
	// Skipped is set when another fetch was already running; nothing was requested.
	Skipped bool `json:"skipped,omitempty"`
	// Done is set when the loader already knew there were no more pages.
	Done bool `json:"done,omitempty"`
}

type ContactSnapshot struct {
	Contacts []*entity.Contact `json:"contacts"`
	HasMore  bool              `json:"has_more"`
	Loading  bool              `json:"loading"`
	Cursor   string            `json:"cursor,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// ContactLoader pages through the counterpart role's identity records, enriches each one
// from the backend and accumulates a contact list in which no identity key repeats.
// One loader lives for one sidebar session of one user.
type ContactLoader struct {
	uid     string
	role    entity.Role
	deps    LoaderDeps
	cfg     LoaderConfig
	trigger ScrollTrigger

	ctx    context.Context
	cancel context.CancelFunc

	inFlight atomic.Bool

	mu       sync.RWMutex
	cursor   string
	seen     *IdentitySet
	contacts []*entity.Contact
	cached   []*entity.Contact
	live     bool
	hasMore  bool
	lastErr  error
}

// NewContactLoader starts a session for uid acting as role. Contacts cached by a previous
// session are available from Snapshot right away and are replaced by the first live page.
func NewContactLoader(parent context.Context, uid string, role entity.Role, deps LoaderDeps, cfg LoaderConfig) *ContactLoader {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(parent)

	l := &ContactLoader{
		uid:     uid,
		role:    role,
		deps:    deps,
		cfg:     cfg,
		trigger: NewScrollTrigger(cfg.ScrollThreshold),
		ctx:     ctx,
		cancel:  cancel,
		seen:    NewIdentitySet(),
		hasMore: true,
	}

	if deps.Cache != nil {
		for _, c := range deps.Cache.Contacts(ctx, role, uid) {
			if c == nil || c.AuthID == uid {
				continue
			}
			c.FromCache = true
			l.cached = append(l.cached, c)
		}
	}

	return l
}

func (l *ContactLoader) UserID() string    { return l.uid }
func (l *ContactLoader) Role() entity.Role { return l.role }

// Close aborts any running enrichment. The loader must not be used afterwards.
func (l *ContactLoader) Close() {
	l.cancel()
}

func (l *ContactLoader) Closed() bool {
	return l.ctx.Err() != nil
}

func (l *ContactLoader) HasMore() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hasMore
}

func (l *ContactLoader) InFlight() bool {
	return l.inFlight.Load()
}

func (l *ContactLoader) Snapshot() ContactSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.contacts
	if !l.live {
		src = l.cached
	}
	contacts := make([]*entity.Contact, len(src))
	copy(contacts, src)

	snap := ContactSnapshot{
		Contacts: contacts,
		HasMore:  l.hasMore,
		Loading:  l.inFlight.Load(),
		Cursor:   l.cursor,
	}
	if l.lastErr != nil {
		snap.Error = errors.PageFetchFailed(l.lastErr).Message
	}
	return snap
}

// OnScroll fetches the next batch when pos is close enough to the bottom. It returns a
// nil result when the trigger did not fire.
func (l *ContactLoader) OnScroll(ctx context.Context, pos ScrollPosition) (*BatchResult, error) {
	if !l.trigger.ShouldFetch(pos, l.inFlight.Load(), l.HasMore()) {
		return nil, nil
	}
	return l.FetchNextBatch(ctx)
}

// FetchNextBatch requests one page after the current cursor and appends the contacts it
// yields. A concurrent call returns immediately with Skipped set.
//
// A failed page fetch stops pagination for good and returns PAGE_FETCH_FAILED. A failed
// enrichment only drops that one record.
func (l *ContactLoader) FetchNextBatch(ctx context.Context) (*BatchResult, error) {
	if !l.inFlight.CompareAndSwap(false, true) {
		return &BatchResult{Skipped: true, HasMore: l.HasMore()}, nil
	}
	defer l.inFlight.Store(false)

	l.mu.RLock()
	hasMore, cursor := l.hasMore, l.cursor
	l.mu.RUnlock()

	if !hasMore {
		return &BatchResult{Done: true}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(l.ctx, cancel)
	defer stop()

	page, err := l.deps.Identities.ListByRole(ctx, l.role.Counterpart(), cursor, l.cfg.PageSize)
	if err != nil && (ctx.Err() != nil || l.Closed()) {
		// The request or the session ended; the same page is fetched next time.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, l.ctx.Err()
	}
	if err != nil {
		logger.Error("Contact page fetch failed for %s (%s) after cursor %q: %v", l.uid, l.role, cursor, err)
		l.mu.Lock()
		l.lastErr = err
		l.hasMore = false
		l.mu.Unlock()
		return nil, errors.PageFetchFailed(err)
	}

	if len(page.Records) == 0 {
		l.mu.Lock()
		if page.Scanned > 0 && page.NextCursor != cursor {
			// Every document on the page was unreadable; move past them and keep going.
			l.cursor = page.NextCursor
		} else {
			l.hasMore = false
		}
		hasMore = l.hasMore
		l.mu.Unlock()
		return &BatchResult{HasMore: hasMore}, nil
	}

	candidates := l.candidates(page.Records)
	enriched := l.enrich(ctx, candidates)

	// A cancelled request leaves the cursor where it was so the page is fetched again.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if !l.live {
		l.live = true
		l.cached = nil
	}
	appended := make([]*entity.Contact, 0, len(enriched))
	for _, c := range enriched {
		if c == nil {
			continue
		}
		id := c.Identity()
		if l.seen.Contains(id) {
			continue
		}
		l.seen.Add(id)
		appended = append(appended, c)
	}
	l.contacts = append(l.contacts, appended...)
	l.cursor = page.NextCursor
	if len(appended) == 0 {
		l.hasMore = false
	}
	hasMore = l.hasMore
	all := make([]*entity.Contact, len(l.contacts))
	copy(all, l.contacts)
	l.mu.Unlock()

	logger.Debug("Contact page for %s (%s): %d records, %d new, has_more=%v",
		l.uid, l.role, len(page.Records), len(appended), hasMore)

	if l.deps.Cache != nil {
		if err := l.deps.Cache.SaveContacts(ctx, l.role, l.uid, all); err != nil {
			logger.Warn("Failed to cache contacts for %s: %v", l.uid, err)
		}
	}

	return &BatchResult{Appended: appended, HasMore: hasMore}, nil
}

// candidates drops the caller, identities already listed and repeats within the page.
func (l *ContactLoader) candidates(records []*entity.IdentityRecord) []*entity.IdentityRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	page := NewIdentitySet()
	out := make([]*entity.IdentityRecord, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.ID == "" || rec.ID == l.uid {
			continue
		}
		id := rec.Identity()
		if l.seen.Contains(id) || page.Contains(id) {
			continue
		}
		page.Add(id)
		out = append(out, rec)
	}
	return out
}

// enrich looks up every record concurrently. The result is in request order with nil
// where the lookup failed.
func (l *ContactLoader) enrich(ctx context.Context, records []*entity.IdentityRecord) []*entity.Contact {
	results := make([]*entity.Contact, len(records))

	var g errgroup.Group
	g.SetLimit(l.cfg.EnrichConcurrency)
	for i, rec := range records {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			contact, err := l.enrichOne(ctx, rec)
			if err != nil {
				logger.Warn("Skipping contact %s: profile lookup failed: %v", rec.ID, err)
				return nil
			}
			results[i] = contact
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (l *ContactLoader) enrichOne(ctx context.Context, rec *entity.IdentityRecord) (*entity.Contact, error) {
	role := l.role.Counterpart()
	profile, err := l.deps.Directory.GetProfile(ctx, l.uid, role, rec.ID)
	if err != nil {
		return nil, err
	}

	contact := &entity.Contact{
		AuthID:    rec.ID,
		BackendID: profile.BackendID,
		Role:      role,
		Name:      profile.DisplayName(),
		AvatarURL: profile.Avatar(),
		Bio:       profile.Snippet(),
		Online:    profile.Online,
	}
	if contact.BackendID == "" {
		contact.BackendID = rec.BackendID
	}
	if contact.Name == "" {
		contact.Name = rec.DisplayName
	}
	if l.deps.Presence != nil && l.deps.Presence.IsOnline(rec.ID) {
		contact.Online = true
	}
	return contact, nil
}

// ContactSessions holds the live loader of every (user, role) pair.
type ContactSessions struct {
	root context.Context
	deps LoaderDeps
	cfg  LoaderConfig

	mu      sync.Mutex
	loaders map[string]*ContactLoader
}

func NewContactSessions(root context.Context, deps LoaderDeps, cfg LoaderConfig) *ContactSessions {
	return &ContactSessions{
		root:    root,
		deps:    deps,
		cfg:     cfg,
		loaders: make(map[string]*ContactLoader),
	}
}

func sessionKey(uid string, role entity.Role) string {
	return string(role) + ":" + uid
}

// Open returns the user's current loader, creating one if there is none.
func (s *ContactSessions) Open(uid string, role entity.Role) *ContactLoader {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(uid, role)
	if l, ok := s.loaders[key]; ok && !l.Closed() {
		return l
	}
	l := NewContactLoader(s.root, uid, role, s.deps, s.cfg)
	s.loaders[key] = l
	return l
}

// Reset discards the user's loader and starts over from the first page.
func (s *ContactSessions) Reset(uid string, role entity.Role) *ContactLoader {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(uid, role)
	if old, ok := s.loaders[key]; ok {
		old.Close()
	}
	l := NewContactLoader(s.root, uid, role, s.deps, s.cfg)
	s.loaders[key] = l
	return l
}

func (s *ContactSessions) Get(uid string, role entity.Role) (*ContactLoader, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loaders[sessionKey(uid, role)]
	if !ok || l.Closed() {
		return nil, false
	}
	return l, true
}

// CloseUser ends every session of uid.
func (s *ContactSessions) CloseUser(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, role := range []entity.Role{entity.RoleCompany, entity.RoleJobSeeker} {
		key := sessionKey(uid, role)
		if l, ok := s.loaders[key]; ok {
			l.Close()
			delete(s.loaders, key)
		}
	}
}
