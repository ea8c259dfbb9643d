package service

import (
	"testing"

	"msgboard/internal/common/security"
	"msgboard/internal/domain/repository/repotest"

	"github.com/stretchr/testify/require"
)

func newTokenManager(t *testing.T) *security.TokenManager {
	t.Helper()
	m, err := security.NewTokenManager([]byte("test-secret"), security.DefaultTokenTTL)
	require.NoError(t, err)
	return m
}

func newAuthService(t *testing.T) (*AuthService, *repotest.MemoryUserRepository, *repotest.MemoryTokenBlocklist) {
	t.Helper()
	users := repotest.NewMemoryUserRepository()
	bl := repotest.NewMemoryTokenBlocklist()
	return NewAuthService(users, newTokenManager(t), bl, 0), users, bl
}
