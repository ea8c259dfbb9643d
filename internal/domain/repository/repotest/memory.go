// Package repotest provides in-memory test doubles for the repository
// interfaces. They keep the same contracts as the Postgres and Redis stores,
// including uniqueness, and are not wired into the server.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"
	"msgboard/internal/domain/repository"
)

var (
	_ repository.UserRepository    = (*MemoryUserRepository)(nil)
	_ repository.MessageRepository = (*MemoryMessageRepository)(nil)
	_ repository.ImageRepository   = (*MemoryImageRepository)(nil)
	_ repository.TokenBlocklist    = (*MemoryTokenBlocklist)(nil)
)

type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]string
	byName  map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    map[string]*model.User{},
		byEmail: map[string]string{},
		byName:  map[string]string{},
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[strings.ToLower(user.Email)]; ok {
		return repository.ConflictFromConstraint("users_email_key")
	}
	if _, ok := r.byName[user.Username]; ok {
		return repository.ConflictFromConstraint("users_username_key")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[strings.ToLower(user.Email)] = user.ID
	r.byName[user.Username] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(r.byEmail[strings.ToLower(email)])
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(r.byName[username])
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

// Delete removes a user; the production store never deletes.
func (r *MemoryUserRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byEmail, strings.ToLower(u.Email))
	delete(r.byName, u.Username)
	delete(r.byID, id)
}

// Count returns the number of stored users.
func (r *MemoryUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *MemoryUserRepository) get(id string) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *u
	return &c, nil
}

type MemoryMessageRepository struct {
	mu       sync.Mutex
	messages []model.Message
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{}
}

func (r *MemoryMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MemoryMessageRepository) ListNewestFirst(ctx context.Context) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Message, len(r.messages))
	// Reverse insertion order first so equal timestamps keep newest first.
	for i, m := range r.messages {
		out[len(r.messages)-1-i] = m
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

type MemoryImageRepository struct {
	mu     sync.Mutex
	images []model.Image
}

func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{}
}

func (r *MemoryImageRepository) Create(ctx context.Context, img *model.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, *img)
	return nil
}

func (r *MemoryImageRepository) FindByID(ctx context.Context, id string) (*model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range r.images {
		if img.ID == id {
			c := img
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryImageRepository) ListRecent(ctx context.Context, limit int) ([]model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Image, len(r.images))
	for i, img := range r.images {
		out[len(r.images)-1-i] = img
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type MemoryTokenBlocklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryTokenBlocklist() *MemoryTokenBlocklist {
	return &MemoryTokenBlocklist{revoked: map[string]time.Time{}}
}

func (b *MemoryTokenBlocklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[tokenID] = expiresAt
	return nil
}

func (b *MemoryTokenBlocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.revoked[tokenID]
	return ok && time.Now().Before(exp), nil
}
