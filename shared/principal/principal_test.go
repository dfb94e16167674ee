package principal_test

import (
	"context"
	"testing"

	"guesthouse/shared/constant"
	"guesthouse/shared/principal"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal_HasRole(t *testing.T) {
	p := principal.Principal{UserID: "u-1", Role: constant.RoleReception, Source: principal.SourceToken}

	assert.True(t, p.HasRole(constant.RoleAdmin, constant.RoleReception))
	assert.False(t, p.HasRole(constant.RoleAdmin))
	assert.False(t, principal.Scanner("device-1").HasRole(constant.RoleAdmin))
}

func TestPrincipal_Context(t *testing.T) {
	assert.False(t, principal.FromContext(context.Background()).IsAuthenticated())

	p := principal.Principal{UserID: "u-1", Email: "a@b.c", Role: constant.RoleAdmin, Source: principal.SourceToken}
	ctx := principal.WithContext(context.Background(), p)

	assert.Equal(t, p, principal.FromContext(ctx))
	assert.Equal(t, "u-1", principal.FromContext(ctx).Actor())
	assert.Equal(t, constant.SystemUser, principal.Principal{}.Actor())
}
