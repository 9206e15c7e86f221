package service

import (
	"context"
	"fmt"

	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/tasksystem"
)

// UserService 用户查询服务
type UserService interface {
	ResolveUser(ctx context.Context, userID string) (*model.UserDetails, error)
}

type userService struct {
	client tasksystem.Client
}

// NewUserService 创建用户查询服务
func NewUserService(client tasksystem.Client) UserService {
	return &userService{client: client}
}

// ResolveUser 获取用户邮箱与姓名
func (s *userService) ResolveUser(ctx context.Context, userID string) (*model.UserDetails, error) {
	u, err := s.client.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &model.UserDetails{Email: u.Email, Name: u.Name}, nil
}
