package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/gallery/internal/model"
)

// Recorder は認証結果をメトリクスに記録するためのインターフェース。
type Recorder interface {
	RecordRegistration(result string)
	RecordLogin(result string)
}

// nopRecorder は何も記録しないRecorder。
type nopRecorder struct{}

func (nopRecorder) RecordRegistration(string) {}
func (nopRecorder) RecordLogin(string)        {}

// Service は登録・ログインのビジネスロジックを提供する。
// 成功時はTokenServiceで発行したトークンを返す。
type Service struct {
	store    *CredentialStore
	tokens   *TokenService
	recorder Recorder
}

// NewService はServiceを生成する。recorderがnilの場合は記録を行わない。
func NewService(store *CredentialStore, tokens *TokenService, recorder Recorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		store:    store,
		tokens:   tokens,
		recorder: recorder,
	}
}

// Register はユーザーを登録し、トークンを発行する。
// ユーザー名が既に使われている場合はUSERNAME_TAKENのAPIErrorを返す。
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	result, err := s.store.Register(ctx, username, password)
	if err != nil {
		s.recorder.RecordRegistration("error")
		return "", fmt.Errorf("failed to register user: %w", err)
	}
	s.recorder.RecordRegistration(result.String())

	if result == RegisterAlreadyExists {
		slog.Info("registration rejected: username taken", slog.String("username", username))
		return "", model.NewUsernameTakenError()
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered", slog.String("username", username))
	return token, nil
}

// Login はユーザー名とパスワードを照合し、トークンを発行する。
// ユーザーが存在しない場合とパスワード不一致の場合は同じINVALID_CREDENTIALSのAPIErrorを返す。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	result, err := s.store.Verify(ctx, username, password)
	if err != nil {
		s.recorder.RecordLogin("error")
		return "", fmt.Errorf("failed to verify credentials: %w", err)
	}
	s.recorder.RecordLogin(result.String())

	if result != VerifyValid {
		slog.Info("login rejected", slog.String("username", username))
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.String("username", username))
	return token, nil
}
