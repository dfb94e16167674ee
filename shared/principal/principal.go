// Package principal carries the caller capability resolved once per request by
// the auth middleware and handed explicitly to service entry points.
package principal

import (
	"context"
	"slices"

	"guesthouse/shared/constant"
)

type Source string

const (
	SourceToken   Source = "token"
	SourceScanner Source = "scanner"
	SourceSystem  Source = "system"
)

type Principal struct {
	UserID  string
	Email   string
	Role    string
	TokenID string
	Source  Source
}

type contextKey struct{}

// Scanner is the principal used by devices authenticated with the shared scanner key.
func Scanner(deviceID string) Principal {
	return Principal{UserID: deviceID, Source: SourceScanner}
}

// System is the principal used by background jobs.
func System() Principal {
	return Principal{UserID: constant.SystemUser, Source: SourceSystem}
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...string) bool {
	return p.Role != "" && slices.Contains(roles, p.Role)
}

func (p Principal) IsAuthenticated() bool {
	return p.Source != "" && p.UserID != ""
}

// Actor is the value stored in created_by / modified_by columns.
func (p Principal) Actor() string {
	if p.UserID == "" {
		return constant.SystemUser
	}

	return p.UserID
}

func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal resolved by middleware, or the zero value.
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(contextKey{}).(Principal)

	return p
}
