package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fenilsonani/dupsweep/internal/models"
)

// Authorizer is the permission-grant collaborator that adapters consult
type Authorizer interface {
	Authorize(ctx context.Context, category models.Category) (Authorization, error)
}

// ParseAuthorization parses "granted", "denied" or "restricted"
func ParseAuthorization(s string) (Authorization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "granted", "":
		return AuthGranted, nil
	case "denied":
		return AuthDenied, nil
	case "restricted":
		return AuthRestricted, nil
	default:
		return AuthDenied, fmt.Errorf("unknown authorization %q", s)
	}
}

// StaticAuthorizer answers from a fixed table of grants. Categories missing
// from the table are granted.
type StaticAuthorizer struct {
	mu     sync.RWMutex
	grants map[models.Category]Authorization
}

// NewStaticAuthorizer creates an authorizer from a category->grant table
func NewStaticAuthorizer(grants map[models.Category]Authorization) *StaticAuthorizer {
	copied := make(map[models.Category]Authorization, len(grants))
	for k, v := range grants {
		copied[k] = v
	}
	return &StaticAuthorizer{grants: copied}
}

// Set changes the grant for one category
func (a *StaticAuthorizer) Set(category models.Category, auth Authorization) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants[category] = auth
}

// Authorize implements Authorizer
func (a *StaticAuthorizer) Authorize(ctx context.Context, category models.Category) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return AuthDenied, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if auth, ok := a.grants[category]; ok {
		return auth, nil
	}
	return AuthGranted, nil
}
