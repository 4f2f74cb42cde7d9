package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openestate/realty-service/internal/dtos"
	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/utils"
)

const tokenTTL = 24 * time.Hour

// AuthService registers brokers and customers (each with an owned
// credential record) and issues signed access tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	brokerRepo repositories.BrokerRepository
	custRepo   repositories.CustomerRepository
	jwtSecret  []byte
}

func NewAuthService(
	userRepo repositories.UserRepository,
	brokerRepo repositories.BrokerRepository,
	custRepo repositories.CustomerRepository,
	jwtSecret string,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		brokerRepo: brokerRepo,
		custRepo:   custRepo,
		jwtSecret:  []byte(jwtSecret),
	}
}

// RegisterBroker creates the user credential and the broker profile
// in a single transaction. A duplicate email surfaces as a Conflict
// and nothing is written.
func (s *AuthService) RegisterBroker(ctx context.Context, req dtos.RegisterBrokerRequest) (*models.Broker, error) {
	user, err := s.newUser(req.Email, req.Password, req.Phone, models.RoleBroker)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	broker := &models.Broker{
		ID:        uuid.New(),
		Name:      req.Name,
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.brokerRepo.CreateWithUser(ctx, user, broker); err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			return nil, utils.ConflictError("Email is already registered", err)
		}
		return nil, fmt.Errorf("could not create broker: %w", err)
	}
	return broker, nil
}

func (s *AuthService) RegisterCustomer(ctx context.Context, req dtos.RegisterCustomerRequest) (*models.Customer, error) {
	user, err := s.newUser(req.Email, req.Password, req.Phone, models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cust := &models.Customer{
		ID:        uuid.New(),
		Name:      req.Name,
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.custRepo.CreateWithUser(ctx, user, cust); err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			return nil, utils.ConflictError("Email is already registered", err)
		}
		return nil, fmt.Errorf("could not create customer: %w", err)
	}
	return cust, nil
}

func (s *AuthService) newUser(email, password, phone string, role models.Role) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
		Phone:        phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Login checks the credential and returns a signed token carrying the
// user id and role. The principal id in the response is the broker or
// customer profile id, which is what the rest of the API keys on.
func (s *AuthService) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       utils.ErrCodeInvalidCredentials,
			Message:    "Invalid email or password",
		}
	}

	principalID, err := s.principalID(ctx, user)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("could not sign token: %w", err)
	}

	return &dtos.LoginResponse{
		AccessToken: signed,
		Role:        string(user.Role),
		PrincipalID: principalID,
	}, nil
}

func (s *AuthService) principalID(ctx context.Context, user *models.User) (string, error) {
	switch user.Role {
	case models.RoleBroker:
		broker, err := s.brokerRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return "", fmt.Errorf("could not load broker profile: %w", err)
		}
		if broker == nil {
			return "", utils.NotFoundError("Broker profile not found for user " + user.ID.String())
		}
		return broker.ID.String(), nil
	case models.RoleCustomer:
		cust, err := s.custRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return "", fmt.Errorf("could not load customer profile: %w", err)
		}
		if cust == nil {
			return "", utils.NotFoundError("Customer profile not found for user " + user.ID.String())
		}
		return cust.ID.String(), nil
	default:
		return "", fmt.Errorf("unknown role %q", user.Role)
	}
}

// BrokerForUser resolves the broker profile owned by a user id.
func (s *AuthService) BrokerForUser(ctx context.Context, userID uuid.UUID) (*models.Broker, error) {
	broker, err := s.brokerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not load broker profile: %w", err)
	}
	if broker == nil {
		return nil, utils.NotFoundError("Broker profile not found for user " + userID.String())
	}
	return broker, nil
}

// CustomerForUser resolves the customer profile owned by a user id.
func (s *AuthService) CustomerForUser(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	cust, err := s.custRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not load customer profile: %w", err)
	}
	if cust == nil {
		return nil, utils.NotFoundError("Customer profile not found for user " + userID.String())
	}
	return cust, nil
}
