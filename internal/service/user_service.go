package service

import (
	"context"

	"whatsurv/internal/identity"
	"whatsurv/internal/models"
	"whatsurv/internal/repository"
)

type UserService interface {
	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req repository.UpdateUserRequest) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context) (*models.User, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}

	return s.userRepo.GetUserByID(ctx, id.UID)
}

func (s *userService) UpdateProfile(ctx context.Context, req repository.UpdateUserRequest) (*models.User, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}

	// get user by id
	user, err := s.userRepo.GetUserByID(ctx, id.UID)
	if err != nil {
		return nil, err
	}

	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.SexType != "" {
		user.SexType = req.SexType
	}
	if req.AgeGroup != "" {
		user.AgeGroup = req.AgeGroup
	}

	// update user
	err = s.userRepo.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}
