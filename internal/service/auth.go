package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sales_crm/internal/config"
	"sales_crm/internal/domain"
	"sales_crm/internal/repository"
	apperrors "sales_crm/pkg/errors"
	"sales_crm/pkg/jwt"
	"sales_crm/pkg/logger"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*domain.Identity, error)
}

type LoginResponse struct {
	Employee    *domain.Employee `json:"employee"`
	AccessToken string           `json:"access_token"`
}

type authService struct {
	employeeRepo repository.EmployeeRepository
	jwtCfg       config.JWTConfig
	log          logger.Logger
}

func NewAuthService(employeeRepo repository.EmployeeRepository, jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{
		employeeRepo: employeeRepo,
		jwtCfg:       jwtCfg,
		log:          log,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	employee, err := s.employeeRepo.GetByEmail(ctx, email)
	if err != nil {
		// Не раскрываем, существует ли сотрудник
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !employee.IsActive {
		return nil, apperrors.ErrForbidden
	}

	accessToken, err := jwt.GenerateAccessToken(
		employee.ID, employee.CompanyID, employee.Role,
		s.jwtCfg.AccessSecret, s.jwtCfg.AccessTTL, s.jwtCfg.Issuer,
	)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, apperrors.ErrInternalServer
	}

	if err := s.employeeRepo.UpdateLastLogin(ctx, employee.ID); err != nil {
		s.log.Warn("Failed to update last login", "error", err)
	}

	now := time.Now()
	employee.LastLoginAt = &now
	employee.PasswordHash = ""

	return &LoginResponse{
		Employee:    employee,
		AccessToken: accessToken,
	}, nil
}

// ValidateToken разбирает bearer-токен в личность сотрудника.
// Чисто вычислительная проверка, без похода в БД — те же claims
// использует и REST middleware, и handshake шлюза.
func (s *authService) ValidateToken(tokenString string) (*domain.Identity, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtCfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		EmpID:     claims.EmpID,
		CompanyID: claims.CompanyID,
		Role:      claims.Role,
	}, nil
}
