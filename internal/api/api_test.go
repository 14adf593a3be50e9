package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"account_system/internal/accounts"
	"account_system/internal/auth"
	"account_system/internal/domain"
	"account_system/internal/lifecycle"
	"account_system/internal/purge"
	"account_system/internal/queue"
	"account_system/internal/store"
	"account_system/internal/testutil"
	"account_system/internal/users"
	"account_system/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router *gin.Engine
	store  *store.Store
	cache  *miniredis.Miniredis
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	return buildServer(t, nil, nil)
}

// newCachedServer backs the cache and the token blacklist with an in-memory Redis.
func newCachedServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return buildServer(t, mr, rdb)
}

func buildServer(t *testing.T, mr *miniredis.Miniredis, rdb *redis.Client) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.New(testutil.NewDB(t))
	lc := lifecycle.NewService(st)
	var bl auth.Blacklist
	if rdb != nil {
		bl = auth.NewRedisBlacklist(rdb)
	}
	authSvc, err := auth.NewService(st, lc, bl, queue.LogPublisher{}, auth.Options{
		JWTSecret:          "secret",
		AccessTTL:          15 * time.Minute,
		RefreshTTL:         time.Hour,
		ResetTTL:           time.Hour,
		BcryptCost:         bcrypt.MinCost,
		DefaultAccountType: "WALLET",
		Password:           utils.PasswordPolicy{MinLength: 8, MinUpper: 1, MinDigit: 1, MinSpecial: 1},
		BlockSoftDeleted:   true,
		PublicBaseURL:      "http://localhost:8080",
	})
	require.NoError(t, err)
	accountSvc, err := accounts.NewService(st, accounts.Options{DefaultType: "WALLET", HideSoftDelete: true})
	require.NoError(t, err)
	r := gin.New()
	Register(r, Deps{
		Auth:       authSvc,
		Users:      users.NewService(st, lc),
		Accounts:   accountSvc,
		Lifecycle:  lc,
		Reconciler: purge.NewReconciler(st, purge.WithPurgedHook(utils.PurgedCacheInvalidator(rdb))),
		Redis:      rdb,
		JWTSecret:  "secret",
		CacheTTL:   time.Minute,
		PurgeDays:  15,
		ExposeLink: true,
	})
	return &testServer{router: r, store: st, cache: mr}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

// signupAndLogin registers name and returns its id and access token.
func (s *testServer) signupAndLogin(t *testing.T, name string) (uint, string) {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"username": name, "email": name + "@example.com", "password": "Abcd@123",
	})
	require.Equal(t, http.StatusCreated, code, body)
	id := uint(body["user"].(map[string]any)["id"].(float64))

	code, body = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": name, "password": "Abcd@123"})
	require.Equal(t, http.StatusOK, code, body)
	return id, body["access"].(string)
}

func (s *testServer) setRole(t *testing.T, userID uint, role domain.Role) {
	t.Helper()
	d, err := s.store.DetailsByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, s.store.UpdateDetails(context.Background(), d, map[string]any{"role": role}))
}

func TestSignupValidationAndConflicts(t *testing.T) {
	s := newServer(t)
	s.signupAndLogin(t, "alice")

	code, body := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "Abcd@123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "USERNAME_TAKEN", body["code"])

	code, body = s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "bob", "email": "bob@example.com", "password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	code, body = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
}

func TestAccountCRUD(t *testing.T) {
	s := newServer(t)
	_, alice := s.signupAndLogin(t, "alice")
	_, bob := s.signupAndLogin(t, "bob")

	code, body := s.do(t, http.MethodGet, "/accounts", alice, nil)
	require.Equal(t, http.StatusOK, code)
	list := body["accounts"].([]any)
	require.Len(t, list, 1, "signup creates the default account")
	assert.Equal(t, "WALLET", list[0].(map[string]any)["account_type"])

	code, body = s.do(t, http.MethodPost, "/accounts", alice, gin.H{"account_type": "WALLET"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "DUPLICATE_ACCOUNT_TYPE", body["code"])

	code, body = s.do(t, http.MethodPost, "/accounts", alice, gin.H{"account_type": "SAVINGS", "account_value": 250})
	require.Equal(t, http.StatusCreated, code, body)
	savings := fmt.Sprintf("/accounts/%d", int(body["id"].(float64)))

	code, _ = s.do(t, http.MethodGet, savings, bob, nil)
	assert.Equal(t, http.StatusNotFound, code, "accounts are owner scoped")

	code, body = s.do(t, http.MethodPut, savings, alice, gin.H{"account_value": 300})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(300), body["account_value"])
	assert.Equal(t, "SAVINGS", body["account_type"])

	code, body = s.do(t, http.MethodPost, savings+"/archive", alice, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["is_deleted"])

	_, body = s.do(t, http.MethodGet, "/accounts", alice, nil)
	assert.Len(t, body["accounts"].([]any), 1)
	_, body = s.do(t, http.MethodGet, "/accounts?include_deleted=true", alice, nil)
	assert.Len(t, body["accounts"].([]any), 2)

	code, _ = s.do(t, http.MethodPost, savings+"/restore", alice, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, savings, alice, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(t, http.MethodGet, savings, alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/accounts/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(t, http.MethodGet, "/accounts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProfileAndPasswordReset(t *testing.T) {
	s := newServer(t)
	_, alice := s.signupAndLogin(t, "alice")

	code, body := s.do(t, http.MethodPatch, "/auth/update-profile", alice, gin.H{"first_name": "Alice", "phone_number": "0987654321"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Alice", body["first_name"])
	assert.Equal(t, "0987654321", body["details"].(map[string]any)["phone_number"])

	code, body = s.do(t, http.MethodGet, "/auth/profile", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "USER", body["details"].(map[string]any)["role"])
	assert.NotContains(t, body, "password")

	code, body = s.do(t, http.MethodPost, "/auth/forget-password", "", gin.H{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, code, body)
	link := body["reset_link"].(string)
	path := link[len("http://localhost:8080"):]

	code, body = s.do(t, http.MethodPost, path, "", gin.H{"new_password": "Wxyz@987"})
	require.Equal(t, http.StatusOK, code, body)
	code, _ = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "alice", "password": "Wxyz@987"})
	assert.Equal(t, http.StatusOK, code)
}

func TestSelfDeleteAndRestore(t *testing.T) {
	s := newServer(t)
	_, alice := s.signupAndLogin(t, "alice")

	code, _ := s.do(t, http.MethodDelete, "/auth/delete-account", alice, nil)
	require.Equal(t, http.StatusOK, code)

	code, body := s.do(t, http.MethodGet, "/accounts", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "USER_DEACTIVATED", body["code"])

	code, body = s.do(t, http.MethodPost, "/auth/restore", "", gin.H{"username": "alice", "password": "Abcd@123"})
	require.Equal(t, http.StatusOK, code, body)
	code, _ = s.do(t, http.MethodGet, "/accounts", body["access"].(string), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	rootID, root := s.signupAndLogin(t, "root")
	s.setRole(t, rootID, domain.RoleSuperAdmin)
	groupID, group := s.signupAndLogin(t, "group")
	s.setRole(t, groupID, domain.RoleGroupAdmin)
	aliceID, alice := s.signupAndLogin(t, "alice")

	code, _ := s.do(t, http.MethodGet, "/admin/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(t, http.MethodGet, "/admin/users?page=1&page_size=2", group, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["total_pages"])
	assert.Len(t, body["users"].([]any), 2)

	userPath := fmt.Sprintf("/admin/users/%d", aliceID)
	code, body = s.do(t, http.MethodDelete, userPath, group, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["is_deleted"])
	code, _ = s.do(t, http.MethodPost, userPath+"/restore", group, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPut, userPath+"/role", group, gin.H{"role": "GROUPADMIN"})
	assert.Equal(t, http.StatusForbidden, code)
	code, body = s.do(t, http.MethodPut, userPath+"/role", root, gin.H{"role": "bogus"})
	assert.Equal(t, http.StatusBadRequest, code, body)
	code, body = s.do(t, http.MethodPut, userPath+"/role", root, gin.H{"role": "groupadmin"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "GROUPADMIN", body["role"])

	code, _ = s.do(t, http.MethodPost, "/admin/purge", group, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, body = s.do(t, http.MethodPost, "/admin/purge", root, gin.H{"days": 15})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(0), body["purged"])
}

func TestAdminListRejectsPagePastTheEnd(t *testing.T) {
	s := newServer(t)
	rootID, root := s.signupAndLogin(t, "root")
	s.setRole(t, rootID, domain.RoleSuperAdmin)

	code, body := s.do(t, http.MethodGet, "/admin/users?page=9223372036854775807&page_size=100", root, nil)
	assert.Equal(t, http.StatusNotFound, code, body)
	code, _ = s.do(t, http.MethodGet, "/admin/users?page=2", root, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodGet, "/admin/users?page=1", root, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAccountListingCache(t *testing.T) {
	s := newCachedServer(t)
	_, alice := s.signupAndLogin(t, "alice")

	_, body := s.do(t, http.MethodGet, "/accounts", alice, nil)
	assert.Equal(t, false, body["cached"])
	_, body = s.do(t, http.MethodGet, "/accounts", alice, nil)
	assert.Equal(t, true, body["cached"])

	code, _ := s.do(t, http.MethodPost, "/accounts", alice, gin.H{"account_type": "SAVINGS"})
	require.Equal(t, http.StatusCreated, code)
	_, body = s.do(t, http.MethodGet, "/accounts", alice, nil)
	assert.Equal(t, false, body["cached"], "create invalidates the listing")
	assert.Len(t, body["accounts"].([]any), 2)

	s.cache.FastForward(time.Minute + time.Second)
	_, body = s.do(t, http.MethodGet, "/accounts", alice, nil)
	assert.Equal(t, false, body["cached"], "entries expire with the cache TTL")
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s := newCachedServer(t)
	s.signupAndLogin(t, "alice")
	code, pair := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "alice", "password": "Abcd@123"})
	require.Equal(t, http.StatusOK, code)
	access, refresh := pair["access"].(string), pair["refresh"].(string)

	code, body := s.do(t, http.MethodPost, "/auth/logout", access, gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, code, body)
	code, _ = s.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPurgeInvalidatesCaches(t *testing.T) {
	ctx := context.Background()
	s := newCachedServer(t)
	rootID, root := s.signupAndLogin(t, "root")
	s.setRole(t, rootID, domain.RoleSuperAdmin)
	aliceID, _ := s.signupAndLogin(t, "alice")

	_, body := s.do(t, http.MethodGet, "/admin/users", root, nil)
	assert.Equal(t, false, body["cached"])
	_, body = s.do(t, http.MethodGet, "/admin/users", root, nil)
	assert.Equal(t, true, body["cached"])

	code, _ := s.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d", aliceID), root, nil)
	require.Equal(t, http.StatusOK, code)
	_, body = s.do(t, http.MethodGet, "/admin/users", root, nil)
	assert.Equal(t, false, body["cached"], "soft delete invalidates the listing")

	// age the soft deletion past the retention window
	d, err := s.store.DetailsByUserID(ctx, aliceID)
	require.NoError(t, err)
	require.NoError(t, s.store.UpdateDetails(ctx, d, map[string]any{"deleted_at": time.Now().UTC().Add(-20 * 24 * time.Hour)}))
	require.NoError(t, s.cache.Set(utils.AccountsCachePrefix(aliceID)+"all=false", "[]"))
	_, body = s.do(t, http.MethodGet, "/admin/users", root, nil)
	assert.Equal(t, true, body["cached"])

	code, body = s.do(t, http.MethodPost, "/admin/purge", root, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(1), body["purged"])
	assert.False(t, s.cache.Exists(utils.AccountsCachePrefix(aliceID)+"all=false"))

	_, body = s.do(t, http.MethodGet, "/admin/users", root, nil)
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, float64(1), body["total"])
}
