package accounts

import (
	"context"
	"strings"
	"testing"

	"account_system/internal/domain"
	"account_system/internal/lifecycle"
	"account_system/internal/store"
	"account_system/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts Options) (*Service, *store.Store, uint, uint) {
	t.Helper()
	ctx := context.Background()
	st := store.New(testutil.NewDB(t))
	var ids []uint
	for _, name := range []string{"alice", "bob"} {
		u := &domain.User{Username: name, Email: name + "@example.com", Password: "hash"}
		require.NoError(t, st.CreateUser(ctx, u))
		ids = append(ids, u.ID)
	}
	if opts.DefaultType == "" {
		opts.DefaultType = "WALLET"
	}
	svc, err := NewService(st, opts)
	require.NoError(t, err)
	return svc, st, ids[0], ids[1]
}

func TestNewServiceRequiresDefaultType(t *testing.T) {
	_, err := NewService(store.New(testutil.NewDB(t)), Options{DefaultType: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateRejectsDuplicateType(t *testing.T) {
	ctx := context.Background()
	svc, _, alice, bob := setup(t, Options{})

	_, err := svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountType)
	assert.Equal(t, "DUPLICATE_ACCOUNT_TYPE", domain.Code(err))

	savings, err := svc.Create(ctx, alice, CreateInput{AccountType: "SAVINGS", AccountValue: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(100), savings.AccountValue)

	_, err = svc.Create(ctx, bob, CreateInput{AccountType: "WALLET"})
	assert.NoError(t, err, "uniqueness is per owner")
}

func TestCreateUsesConfiguredDefaultType(t *testing.T) {
	svc, _, alice, _ := setup(t, Options{DefaultType: "MAIN"})

	a, err := svc.Create(context.Background(), alice, CreateInput{})
	require.NoError(t, err)
	assert.Equal(t, "MAIN", a.AccountType)
	assert.Equal(t, "MAIN", svc.DefaultType())
}

func TestCreateValidatesTypeLength(t *testing.T) {
	svc, _, alice, _ := setup(t, Options{})

	_, err := svc.Create(context.Background(), alice, CreateInput{AccountType: strings.Repeat("X", 21)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateCountsTypeLengthInCharacters(t *testing.T) {
	ctx := context.Background()
	svc, _, alice, _ := setup(t, Options{})

	a, err := svc.Create(ctx, alice, CreateInput{AccountType: "ÉPARGNE-ÉTUDES-ÉTÉ"})
	require.NoError(t, err, "18 characters fit even though they take 21 bytes")
	assert.Equal(t, "ÉPARGNE-ÉTUDES-ÉTÉ", a.AccountType)

	_, err = svc.Create(ctx, alice, CreateInput{AccountType: strings.Repeat("É", 20)})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, alice, CreateInput{AccountType: strings.Repeat("É", 21)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	savings := "SAVINGS"
	_, err = svc.Update(ctx, alice, a.ID, UpdateInput{AccountType: &savings})
	require.NoError(t, err)
	tooLong := strings.Repeat("ü", 21)
	_, err = svc.Update(ctx, alice, a.ID, UpdateInput{AccountType: &tooLong})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateCountsSoftDeletedAccounts(t *testing.T) {
	ctx := context.Background()
	svc, st, alice, _ := setup(t, Options{})

	a, err := svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	require.NoError(t, err)
	_, err = lifecycle.NewService(st).SoftDeleteAccount(ctx, alice, a.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountType)
}

func TestOtherOwnersAccountIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, alice, bob := setup(t, Options{})
	a, err := svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v := int64(5)
	_, err = svc.Update(ctx, bob, a.ID, UpdateInput{AccountValue: &v})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, bob, a.ID), domain.ErrNotFound)

	got, err := svc.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AccountValue)
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc, _, alice, _ := setup(t, Options{})
	wallet, err := svc.Create(ctx, alice, CreateInput{AccountType: "WALLET", AccountValue: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, CreateInput{AccountType: "SAVINGS"})
	require.NoError(t, err)

	v := int64(500)
	updated, err := svc.Update(ctx, alice, wallet.ID, UpdateInput{AccountValue: &v})
	require.NoError(t, err)
	assert.Equal(t, int64(500), updated.AccountValue)
	assert.Equal(t, "WALLET", updated.AccountType)

	taken := "SAVINGS"
	_, err = svc.Update(ctx, alice, wallet.ID, UpdateInput{AccountType: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountType)

	same := "WALLET"
	_, err = svc.Update(ctx, alice, wallet.ID, UpdateInput{AccountType: &same})
	assert.NoError(t, err)

	blank := " "
	_, err = svc.Update(ctx, alice, wallet.ID, UpdateInput{AccountType: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	renamed := "CHECKING"
	updated, err = svc.Update(ctx, alice, wallet.ID, UpdateInput{AccountType: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "CHECKING", updated.AccountType)

	stored, err := svc.Get(ctx, alice, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, "CHECKING", stored.AccountType)
	assert.Equal(t, int64(500), stored.AccountValue)
}

func TestListHidesSoftDeletedWhenConfigured(t *testing.T) {
	ctx := context.Background()
	svc, st, alice, _ := setup(t, Options{HideSoftDelete: true})
	_, err := svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	require.NoError(t, err)
	old, err := svc.Create(ctx, alice, CreateInput{AccountType: "OLD"})
	require.NoError(t, err)
	_, err = lifecycle.NewService(st).SoftDeleteAccount(ctx, alice, old.ID)
	require.NoError(t, err)

	visible, err := svc.List(ctx, alice, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := svc.List(ctx, alice, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	shown, err := NewService(st, Options{DefaultType: "WALLET", HideSoftDelete: false})
	require.NoError(t, err)
	everything, err := shown.List(ctx, alice, false)
	require.NoError(t, err)
	assert.Len(t, everything, 2)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, alice, _ := setup(t, Options{})
	a, err := svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice, a.ID))
	_, err = svc.Get(ctx, alice, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Create(ctx, alice, CreateInput{AccountType: "WALLET"})
	assert.NoError(t, err, "type is free again after a hard delete")
}
