package service

import (
	"context"
	"fmt"

	"fairtix/internal/model"
	"fairtix/internal/repository"

	"github.com/google/uuid"
)

// demoPasswordHash 登入是展示用 stub，不驗證密碼
const demoPasswordHash = "demo_hash"

type UserService interface {
	// Login 每次呼叫建立一個新的展示用帳號
	Login(ctx context.Context) (*model.User, error)
}

type UserServiceImpl struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &UserServiceImpl{repo: repo}
}

func (s *UserServiceImpl) Login(ctx context.Context) (*model.User, error) {
	id := uuid.New()
	user := &model.User{
		ID:           id,
		Email:        fmt.Sprintf("user_%s@example.com", hexID(id)),
		PasswordHash: demoPasswordHash,
	}
	return s.repo.Create(ctx, user)
}

// hexID 32 字元不含連字號
func hexID(id uuid.UUID) string {
	return fmt.Sprintf("%x", id[:])
}
