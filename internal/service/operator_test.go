package service

import (
	"testing"

	"bulletins/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOperatorService(t *testing.T) *OperatorService {
	t.Helper()
	repo, err := repository.NewGormOperatorRepository(openTestDB(t))
	require.NoError(t, err)
	return NewOperatorService(repo)
}

func TestOperatorService_Register(t *testing.T) {
	svc := newOperatorService(t)

	_, err := svc.Register(1, "anna", "", "")
	assert.Error(t, err)

	op, err := svc.Register(1, "anna", "Anna", "K")
	require.NoError(t, err)
	assert.False(t, op.IsAdmin())

	op, err = svc.Register(1, "anna_k", "Anna", "Karenina")
	require.NoError(t, err)
	assert.Equal(t, "anna_k", op.Username)

	all, err := svc.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOperatorService_InitializeAdmin(t *testing.T) {
	svc := newOperatorService(t)

	require.NoError(t, svc.InitializeAdmin(0))
	admins, err := svc.Admins()
	require.NoError(t, err)
	assert.Empty(t, admins)

	_, err = svc.Register(5, "", "Boris", "")
	require.NoError(t, err)
	require.NoError(t, svc.InitializeAdmin(5))
	require.NoError(t, svc.InitializeAdmin(6))

	admins, err = svc.Admins()
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	ok, err := svc.IsAdmin(5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAdmin(42)
	require.NoError(t, err)
	assert.False(t, ok)

	text, err := svc.FormatOperators()
	require.NoError(t, err)
	assert.Contains(t, text, "Boris")
	assert.Contains(t, text, "👑")
}
