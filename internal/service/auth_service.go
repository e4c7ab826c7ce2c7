package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string  `json:"name" binding:"required,min=2,max=100"`
	Image *string `json:"image" binding:"omitempty,url"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=128"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetMe(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
	ListUsers(ctx context.Context, actor Actor, limit, offset int) ([]model.User, int64, error)
	UpdateUserRole(ctx context.Context, actor Actor, userID, role string) error
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiry time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || req.Password == "" {
		return nil, Validation("Missing required fields")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, Conflict("User already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Internal("failed to check user", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, Internal("failed to hash password", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("User already exists")
		}
		return nil, Internal("failed to create user", err)
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized("Invalid email or password")
		}
		return nil, Internal("failed to load user", err)
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, Unauthorized("Invalid email or password")
	}

	return s.issue(user)
}

func (s *authService) GetMe(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "failed to load user")
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, Validation("Name is required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "failed to load user")
	}

	user.Name = name
	if req.Image != nil {
		user.Image = req.Image
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, Internal("failed to update profile", err)
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return Validation("Missing required fields")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "User not found", "failed to load user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return Validation("Current password is incorrect")
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return Internal("failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return Internal("failed to update password", err)
	}
	return nil
}

func (s *authService) ListUsers(ctx context.Context, actor Actor, limit, offset int) ([]model.User, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, Internal("failed to list users", err)
	}
	return users, total, nil
}

// UpdateUserRole changes a user's role. Admins cannot demote themselves so
// the site always keeps at least one admin.
func (s *authService) UpdateUserRole(ctx context.Context, actor Actor, userID, role string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !model.ValidRole(role) {
		return Validation("Invalid role")
	}
	if !isID(userID) {
		return NotFound("User not found")
	}
	if userID == actor.UserID && role != model.RoleAdmin {
		return Validation("You cannot remove your own admin role")
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return notFoundOr(err, "User not found", "failed to update role")
	}
	return nil
}

func (s *authService) issue(user *model.User) (*AuthResponse, error) {
	token, err := util.GenerateToken(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, Internal("failed to generate token", err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}
