package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/gallery/internal/model"
	"github.com/hitoshi/gallery/internal/repository"
)

// RegisterResult は登録処理の結果を表す。
type RegisterResult int

const (
	// RegisterCreated は新しい認証情報が作成されたことを示す。
	RegisterCreated RegisterResult = iota + 1
	// RegisterAlreadyExists は同じユーザー名が既に登録済みであることを示す。
	RegisterAlreadyExists
)

func (r RegisterResult) String() string {
	switch r {
	case RegisterCreated:
		return "created"
	case RegisterAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// VerifyResult はパスワード照合の結果を表す。
// ユーザーが存在しない場合とパスワードが一致しない場合はどちらもVerifyInvalidになる。
type VerifyResult int

const (
	// VerifyValid はユーザー名とパスワードが一致したことを示す。
	VerifyValid VerifyResult = iota + 1
	// VerifyInvalid は照合に失敗したことを示す。
	VerifyInvalid
)

func (r VerifyResult) String() string {
	switch r {
	case VerifyValid:
		return "valid"
	case VerifyInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// CredentialStore はユーザー名とパスワードハッシュの登録・照合を行う。
// 同一ユーザー名の一意性はリポジトリ（DBの一意制約）に委ね、プロセス内ロックは使用しない。
type CredentialStore struct {
	repo   repository.CredentialRepository
	hasher PasswordHasher
	now    func() time.Time

	// 存在しないユーザーの照合でも同等の計算量をかけるためのダミーハッシュ
	dummyMu   sync.Mutex
	dummyHash string
}

// NewCredentialStore はCredentialStoreを生成する。
func NewCredentialStore(repo repository.CredentialRepository, hasher PasswordHasher) *CredentialStore {
	return &CredentialStore{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

// Register は新しい認証情報を登録する。
// 同じユーザー名で同時に呼ばれた場合、RegisterCreatedを返すのは1件のみ。
// 空のユーザー名やパスワードの検証は呼び出し側の責務とする。
func (s *CredentialStore) Register(ctx context.Context, username, plaintextPassword string) (RegisterResult, error) {
	digest, err := s.hasher.Hash(plaintextPassword)
	if err != nil {
		return 0, err
	}

	err = s.repo.InsertUnique(ctx, &model.Credential{
		Username:     username,
		PasswordHash: digest,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		return RegisterAlreadyExists, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to store credential: %w", err)
	}

	return RegisterCreated, nil
}

// Verify はユーザー名とパスワードを照合する。認証情報の変更は行わない。
func (s *CredentialStore) Verify(ctx context.Context, username, plaintextPassword string) (VerifyResult, error) {
	cred, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to look up credential: %w", err)
	}

	if cred == nil {
		// 応答時間からユーザーの有無を推測されないよう、存在する場合と同じ比較を行う
		digest, err := s.dummyDigest()
		if err != nil {
			return 0, fmt.Errorf("failed to prepare dummy digest: %w", err)
		}
		s.hasher.Verify(plaintextPassword, digest)
		return VerifyInvalid, nil
	}

	if !s.hasher.Verify(plaintextPassword, cred.PasswordHash) {
		return VerifyInvalid, nil
	}
	return VerifyValid, nil
}

// dummyDigest は照合専用のダミーハッシュを返す。
// 生成に失敗した場合はエラーを返し、次回の呼び出しで再度生成を試みる。
func (s *CredentialStore) dummyDigest() (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash, nil
	}
	digest, err := s.hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return "", err
	}
	s.dummyHash = digest
	return digest, nil
}
