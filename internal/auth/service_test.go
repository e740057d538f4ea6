package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/gallery/internal/model"
)

// --- モック ---

type spyRecorder struct {
	mu            sync.Mutex
	registrations []string
	logins        []string
}

func (r *spyRecorder) RecordRegistration(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations = append(r.registrations, result)
}

func (r *spyRecorder) RecordLogin(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, result)
}

func newTestService(t *testing.T) (*Service, *TokenService, *spyRecorder) {
	t.Helper()
	tokens := newTestTokenService(&fixedClock{t: time.Now()})
	rec := &spyRecorder{}
	store := NewCredentialStore(newMemoryCredentialRepo(), &plainHasher{})
	return NewService(store, tokens, rec), tokens, rec
}

// --- テスト ---

func TestService_RegisterLoginFlow(t *testing.T) {
	svc, tokens, rec := newTestService(t)
	ctx := context.Background()

	tokenA, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, model.ErrCodeInvalidCredentials, apiErr.Code)

	tokenB, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	for _, tok := range []string{tokenA, tokenB} {
		identity, err := tokens.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username)
	}

	_, err = svc.Register(ctx, "alice", "anything")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, model.ErrCodeUsernameTaken, apiErr.Code)

	assert.Equal(t, []string{"created", "already_exists"}, rec.registrations)
	assert.Equal(t, []string{"invalid", "valid"}, rec.logins)
}

func TestService_Login_UnknownUserMatchesWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, errWrong := svc.Login(ctx, "alice", "wrong")
	_, errMissing := svc.Login(ctx, "nobody", "secret1")

	var wrong, missing *model.APIError
	require.ErrorAs(t, errWrong, &wrong)
	require.ErrorAs(t, errMissing, &missing)
	assert.Equal(t, *wrong, *missing)
}

func TestService_Register_StoreErrorIsInternal(t *testing.T) {
	tokens := NewTokenService(testSecret)
	store := NewCredentialStore(newMemoryCredentialRepo(), &plainHasher{hashErr: errors.New("boom")})
	rec := &spyRecorder{}
	svc := NewService(store, tokens, rec)

	_, err := svc.Register(context.Background(), "alice", "p")
	require.Error(t, err)

	var apiErr *model.APIError
	assert.False(t, errors.As(err, &apiErr), "internal failures must not surface as APIError")
	assert.Equal(t, []string{"error"}, rec.registrations)
}

func TestService_Login_StoreErrorIsInternal(t *testing.T) {
	repo := newMemoryCredentialRepo()
	repo.findErr = errors.New("db down")
	svc := NewService(NewCredentialStore(repo, &plainHasher{}), NewTokenService(testSecret), nil)

	_, err := svc.Login(context.Background(), "alice", "p")
	require.Error(t, err)

	var apiErr *model.APIError
	assert.False(t, errors.As(err, &apiErr))
}
