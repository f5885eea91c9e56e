// Package repotest provides an in-memory credential store for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smart-faculty/auth-service/internal/domain"
	"github.com/smart-faculty/auth-service/internal/repository"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

// Principals is a concurrency-safe in-memory repository.PrincipalRepository.
type Principals struct {
	mu   sync.Mutex
	byID map[string]domain.Principal
	// Err, when set, is returned by every call.
	Err error
}

var _ repository.PrincipalRepository = (*Principals)(nil)

// NewPrincipals returns an empty store.
func NewPrincipals() *Principals {
	return &Principals{byID: make(map[string]domain.Principal)}
}

func (p *Principals) Create(_ context.Context, principal *domain.Principal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	principal.Email = domain.NormalizeEmail(principal.Email)
	for _, existing := range p.byID {
		if existing.Email == principal.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	if principal.ID == "" {
		principal.ID = uuid.NewString()
	}
	principal.CreatedAt = time.Now().UTC()
	p.byID[principal.ID] = *principal
	return nil
}

func (p *Principals) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if _, ok := p.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(p.byID, id)
	return nil
}

func (p *Principals) UpdatePassword(_ context.Context, id, passwordHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	principal, ok := p.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	principal.PasswordHash = passwordHash
	p.byID[id] = principal
	return nil
}

func (p *Principals) GetByID(_ context.Context, id string) (*domain.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	principal, ok := p.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &principal, nil
}

func (p *Principals) GetByEmail(_ context.Context, email string) (*domain.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	email = domain.NormalizeEmail(email)
	for _, principal := range p.byID {
		if principal.Email == email {
			found := principal
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (p *Principals) List(_ context.Context, filter repository.PrincipalFilter) ([]domain.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	all := make([]domain.Principal, 0, len(p.byID))
	for _, principal := range p.byID {
		if filter.Role != nil && principal.Role != *filter.Role {
			continue
		}
		all = append(all, principal)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })

	if filter.Offset >= len(all) {
		return []domain.Principal{}, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}

// SetActive flips the active flag, standing in for the administrative collaborator.
func (p *Principals) SetActive(id string, active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if principal, ok := p.byID[id]; ok {
		principal.IsActive = active
		p.byID[id] = principal
	}
}

// Len reports the number of stored principals.
func (p *Principals) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byID)
}
