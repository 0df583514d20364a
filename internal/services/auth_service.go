package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
	"github.com/hostelnest/hostel-booking-backend/internal/utils"
	"github.com/hostelnest/hostel-booking-backend/pkg/jwt"
)

// Authentication failures are deliberately indistinct from each other at the
// API surface; these sentinels let handlers pick the right status code.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBlocked     = errors.New("account is blocked")
)

// Session is the record of one authenticated login. It holds only who is
// signed in plus device info; it is not a cryptographic token and is never
// persisted in the entity snapshot.
type Session struct {
	ID        string           `json:"id"`
	UserID    uint64           `json:"user_id"`
	Role      models.Role      `json:"role"`
	Device    utils.DeviceInfo `json:"device"`
	CreatedAt time.Time        `json:"created_at"`
}

// TokenPair is the JWT pair returned on login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles signup, login and password changes. Passwords are
// compared by plain equality, same as the source system; hardening this is
// explicitly out of scope.
type AuthService struct {
	store  *store.Store
	jwt    *jwt.Service
	logger *logrus.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

// NewAuthService creates a new AuthService
func NewAuthService(st *store.Store, jwtService *jwt.Service, logger *logrus.Logger) *AuthService {
	return &AuthService{
		store:    st,
		jwt:      jwtService,
		logger:   logger,
		sessions: make(map[string]Session),
	}
}

// Signup registers a self-service resident account.
func (s *AuthService) Signup(req models.SignupRequest) (models.User, error) {
	if err := req.Validate(); err != nil {
		return models.User{}, store.NewValidationError("invalid signup: %v", err)
	}
	if _, exists := s.store.UserByEmail(req.Email); exists {
		return models.User{}, store.NewConflictError("email %s is already registered", req.Email)
	}
	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleResident,
		Status:   models.UserStatusActive,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if err := s.store.UpsertUser(&user); err != nil {
		return models.User{}, err
	}
	s.logger.WithField("user_id", user.ID).Info("Resident registered")
	return user, nil
}

// Login authenticates by plaintext equality and opens a session record.
func (s *AuthService) Login(req models.LoginRequest, userAgent string) (models.User, Session, TokenPair, error) {
	user, ok := s.store.UserByEmail(req.Email)
	if !ok || user.Password != req.Password {
		return models.User{}, Session{}, TokenPair{}, ErrInvalidCredentials
	}
	if user.Status == models.UserStatusBlocked {
		return models.User{}, Session{}, TokenPair{}, ErrAccountBlocked
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return models.User{}, Session{}, TokenPair{}, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return models.User{}, Session{}, TokenPair{}, err
	}

	session := Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Role:      user.Role,
		Device:    utils.ParseUserAgent(userAgent),
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
		"device":  session.Device.DeviceType,
	}).Info("User logged in")
	return user, session, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	user, ok := s.store.UserByID(claims.UserID)
	if !ok {
		return TokenPair{}, ErrInvalidCredentials
	}
	if user.Status == models.UserStatusBlocked {
		return TokenPair{}, ErrAccountBlocked
	}
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ChangePassword swaps a user's password after an equality check on the
// current one.
func (s *AuthService) ChangePassword(userID uint64, req models.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return store.NewValidationError("invalid password change: %v", err)
	}
	user, ok := s.store.UserByID(userID)
	if !ok {
		return store.NewNotFoundError("user", userID)
	}
	if user.Password != req.CurrentPassword {
		return ErrInvalidCredentials
	}
	user.Password = req.NewPassword
	return s.store.UpsertUser(&user)
}

// EndSession drops a session record on logout. Unknown ids are a no-op.
func (s *AuthService) EndSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Sessions lists the open session records, for the admin dashboard.
func (s *AuthService) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
