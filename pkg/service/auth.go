package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

// Claims is the payload of a customer bearer token.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthService struct {
	users  repository.UserStore
	cfg    config.AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserStore, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:  users,
		cfg:    cfg,
		logger: logger.Named("auth"),
		now:    time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return nil, errs.Conflictf("Email already exists")
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, internal(err, "look up user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "hash password")
	}

	now := s.now()
	u := &models.User{
		Name:            in.Name,
		Email:           in.Email,
		Password:        string(hash),
		Cart:            []models.CartEntry{},
		PendingOrders:   []models.Order{},
		DeliveredOrders: []models.Order{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// The unique email index still reports Conflict if a concurrent signup won.
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, internal(err, "create user")
	}

	s.logger.Info("User signed up", zap.String("user_id", u.ID.Hex()))
	return s.result(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Authf(invalidCredentials)
	}
	if err != nil {
		return nil, internal(err, "look up user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, errs.Authf(invalidCredentials)
	}
	return s.result(u)
}

func (s *AuthService) result(u *models.User) (*AuthResult, error) {
	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u.Public()}, nil
}

// IssueToken signs an HS256 token for u that expires after the configured TTL.
func (s *AuthService) IssueToken(u *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		ID:    u.ID.Hex(),
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", errs.Wrap(errs.Internal, err, "sign token")
	}
	return token, nil
}

// ParseToken verifies the signature and expiry and returns the user id.
func (s *AuthService) ParseToken(token string) (primitive.ObjectID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.Authf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return primitive.NilObjectID, errs.Wrap(errs.Auth, err, "Invalid token")
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return primitive.NilObjectID, errs.Authf("Invalid token")
	}
	return id, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Authf("User not found")
	}
	if err != nil {
		return nil, internal(err, "load user")
	}
	return u, nil
}
