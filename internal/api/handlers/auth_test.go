package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	authservice "github.com/JanAndriessens/CalyClub-sub002/internal/services/auth"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/lockout"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) SaveUser(_ context.Context, email string, passHash []byte) (models.User, error) {
	if _, ok := s.users[email]; ok {
		return models.User{}, storage.ErrUserExists
	}
	user := models.User{ID: uuid.New(), Email: email, PassHash: passHash, Role: "member"}
	s.users[email] = user
	return user, nil
}

func (s *fakeUserStore) User(_ context.Context, email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) DeleteUser(_ context.Context, email string) error {
	if _, ok := s.users[email]; !ok {
		return storage.ErrUserNotFound
	}
	delete(s.users, email)
	return nil
}

type fakeLockoutStore struct {
	records map[string]models.LockoutRecord
}

func newFakeLockoutStore() *fakeLockoutStore {
	return &fakeLockoutStore{records: make(map[string]models.LockoutRecord)}
}

func (s *fakeLockoutStore) LockoutRecord(_ context.Context, identity string) (models.LockoutRecord, error) {
	record, ok := s.records[identity]
	if !ok {
		return models.LockoutRecord{}, storage.ErrLockoutNotFound
	}
	return record, nil
}

func (s *fakeLockoutStore) SaveLockoutRecord(_ context.Context, identity string, record models.LockoutRecord) error {
	s.records[identity] = record
	return nil
}

func (s *fakeLockoutStore) RemoveLockoutRecord(_ context.Context, identity string) error {
	delete(s.records, identity)
	return nil
}

type testEnv struct {
	handler  *Handler
	users    *fakeUserStore
	lockouts *fakeLockoutStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := newFakeUserStore()
	lockouts := newFakeLockoutStore()

	failedAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "failed_login_attempts_total"}, []string{"email"})
	accountLockouts := prometheus.NewCounter(prometheus.CounterOpts{Name: "account_lockouts_total"})
	lockoutService := lockout.New(log, lockouts, nil, failedAttempts, accountLockouts)

	authService := authservice.New(log, users, users, lockoutService, "test-secret", time.Hour)

	return &testEnv{
		handler:  New(log, authService, lockouts),
		users:    users,
		lockouts: lockouts,
	}
}

func (e *testEnv) registerUser(t *testing.T, email, password string) {
	t.Helper()

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = e.users.SaveUser(context.Background(), email, passHash)
	require.NoError(t, err)
}

func postLogin(t *testing.T, handler *Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func generatePassword() string {
	return gofakeit.Password(true, false, true, true, true, 10)
}

func TestLogin_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	email := gofakeit.Email()
	password := generatePassword()
	env.registerUser(t, email, password)

	rec := postLogin(t, env.handler, email, password)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	email := gofakeit.Email()
	env.registerUser(t, email, generatePassword())

	rec := postLogin(t, env.handler, email, generatePassword())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, MsgInvalidCredentials), rec.Body.String())
}

func TestLogin_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{name: "empty email", email: "", password: generatePassword(), wantMsg: MsgEmailRequired},
		{name: "invalid email", email: "not-an-email", password: generatePassword(), wantMsg: MsgInvalidEmail},
		{name: "empty password", email: gofakeit.Email(), password: "", wantMsg: MsgPasswordRequired},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := postLogin(t, env.handler, test.email, test.password)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, test.wantMsg), rec.Body.String())
		})
	}
}

func TestLogin_LockoutEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	email := "jean@example.com"
	password := generatePassword()
	env.registerUser(t, email, password)

	// four failures leave the account open
	for i := 1; i < lockout.MaxAttempts; i++ {
		rec := postLogin(t, env.handler, email, "wrong-password")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i)
	}

	// the fifth failure trips the lock
	rec := postLogin(t, env.handler, email, "wrong-password")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, MsgTooManyAttempts), rec.Body.String())

	// even the right password is refused while the window is open
	rec = postLogin(t, env.handler, email, password)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"error":"Compte temporairement bloqué. Réessayez dans %d minutes."}`, 15), rec.Body.String())
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	env := newTestEnv(t)
	email := gofakeit.Email()
	password := generatePassword()
	env.registerUser(t, email, password)

	for i := 0; i < 2; i++ {
		postLogin(t, env.handler, email, "wrong-password")
	}

	rec := postLogin(t, env.handler, email, password)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, env.lockouts.records, email)

	// the counter starts from scratch after a successful login
	for i := 1; i < lockout.MaxAttempts; i++ {
		rec := postLogin(t, env.handler, email, "wrong-password")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i)
	}
}

func TestLogin_UnknownUserCountsAsFailure(t *testing.T) {
	env := newTestEnv(t)
	email := gofakeit.Email()

	rec := postLogin(t, env.handler, email, generatePassword())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, env.lockouts.records, email)
}

func TestRegister_HappyPath(t *testing.T) {
	env := newTestEnv(t)

	body, err := json.Marshal(map[string]string{"email": gofakeit.Email(), "password": generatePassword()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err = uuid.Parse(resp["userId"])
	assert.NoError(t, err)
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	email := gofakeit.Email()
	env.registerUser(t, email, generatePassword())

	body, err := json.Marshal(map[string]string{"email": email, "password": generatePassword()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, MsgUserExists), rec.Body.String())
}
