package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/entities"
	"makemeshort/internal/jwt"
	"makemeshort/internal/models"
	"makemeshort/internal/repository"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Bootstrap creates the initial superuser from configuration. It only
	// succeeds while the user table is empty.
	Bootstrap(ctx context.Context) (*models.AuthResponse, error)
}

type authService struct {
	userRepo          repository.UserRepository
	jwtService        *jwt.JWTService
	allowPublicSignup bool
	superuserEmail    string
	superuserPassword string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtService *jwt.JWTService, allowPublicSignup bool, superuserEmail, superuserPassword string) AuthService {
	return &authService{
		userRepo:          userRepo,
		jwtService:        jwtService,
		allowPublicSignup: allowPublicSignup,
		superuserEmail:    superuserEmail,
		superuserPassword: superuserPassword,
	}
}

func (s *authService) createUser(ctx context.Context, email, password string, name *string) (*entities.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to hash password", err)
	}
	return s.userRepo.Create(ctx, email, string(hashed), name)
}

func (s *authService) respond(user *entities.User) (*models.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to generate token", err)
	}
	return &models.AuthResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		Token:     token,
	}, nil
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if !s.allowPublicSignup {
		return nil, apperrors.New(apperrors.Forbidden, "public signup is disabled")
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Indistinguishable from a bad password on purpose.
		return nil, apperrors.New(apperrors.Forbidden, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.New(apperrors.Forbidden, "invalid email or password")
	}

	return s.respond(user)
}

func (s *authService) Bootstrap(ctx context.Context) (*models.AuthResponse, error) {
	if s.superuserEmail == "" || s.superuserPassword == "" {
		return nil, apperrors.New(apperrors.Forbidden, "superuser credentials are not configured")
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.New(apperrors.CodeConflict, "users already exist, cannot create initial superuser")
	}

	name := "Super User"
	user, err := s.createUser(ctx, s.superuserEmail, s.superuserPassword, &name)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}
