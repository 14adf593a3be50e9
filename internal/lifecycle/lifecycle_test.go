package lifecycle

import (
	"context"
	"testing"
	"time"

	"account_system/internal/domain"
	"account_system/internal/store"
	"account_system/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*store.Store, *domain.User) {
	t.Helper()
	ctx := context.Background()
	st := store.New(testutil.NewDB(t))
	phone := "0987654321"
	u := &domain.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, st.CreateUser(ctx, u))
	require.NoError(t, st.CreateDetails(ctx, &domain.UserDetails{UserID: u.ID, PhoneNumber: &phone, Role: domain.RoleGroupAdmin}))
	return st, u
}

func assertConsistent(t *testing.T, sd domain.SoftDelete) {
	t.Helper()
	assert.Equal(t, sd.IsDeleted, sd.DeletedAt != nil, "is_deleted must track deleted_at")
}

func TestSoftDeleteThenRestoreUser(t *testing.T) {
	ctx := context.Background()
	st, u := setup(t)
	before, err := st.DetailsByUserID(ctx, u.ID)
	require.NoError(t, err)

	svc := NewService(st)
	deleted, err := svc.SoftDeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSoftDeleted, deleted.State())
	assertConsistent(t, deleted.SoftDelete)

	stored, err := st.DetailsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	require.NotNil(t, stored.DeletedAt)
	assertConsistent(t, stored.SoftDelete)

	_, err = svc.RestoreUser(ctx, u.ID)
	require.NoError(t, err)

	after, err := st.DetailsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
	assertConsistent(t, after.SoftDelete)
}

func TestRestoreNeverDeletedUserIsNoop(t *testing.T) {
	ctx := context.Background()
	st, u := setup(t)

	d, err := NewService(st).RestoreUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, d.IsDeleted)
	assert.Nil(t, d.DeletedAt)

	stored, err := st.DetailsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, stored.State())
}

func TestSoftDeleteTwiceRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	st, u := setup(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(st, WithClock(func() time.Time { return now }))

	first, err := svc.SoftDeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, first.DeletedAt.Equal(now))

	now = now.Add(48 * time.Hour)
	second, err := svc.SoftDeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, second.DeletedAt.Equal(now))

	stored, err := st.DetailsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.DeletedAt.Equal(now))
}

func TestSoftDeleteUnknownUser(t *testing.T) {
	st, _ := setup(t)
	_, err := NewService(st).SoftDeleteUser(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountTransitionsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	st, alice := setup(t)
	bob := &domain.User{Username: "bob", Email: "bob@example.com", Password: "hash"}
	require.NoError(t, st.CreateUser(ctx, bob))

	acc := &domain.Account{UserID: alice.ID, AccountType: "WALLET", AccountValue: 250}
	require.NoError(t, st.CreateAccount(ctx, acc))
	svc := NewService(st)

	_, err := svc.SoftDeleteAccount(ctx, bob.ID, acc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := svc.SoftDeleteAccount(ctx, alice.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSoftDeleted, deleted.State())
	assertConsistent(t, deleted.SoftDelete)

	restored, err := svc.RestoreAccount(ctx, alice.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, restored.State())

	stored, err := st.OwnedAccount(ctx, alice.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), stored.AccountValue)
	assert.Equal(t, "WALLET", stored.AccountType)
	assert.False(t, stored.IsDeleted)
	assert.Nil(t, stored.DeletedAt)
}
