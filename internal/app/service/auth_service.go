package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"github.com/gsaan/gsaan-backend/pkg/redis"
	"github.com/gsaan/gsaan-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserDisabled       = errors.New("user disabled")
	ErrTooManyRequests    = errors.New("too many failed sign-in attempts")
	ErrNotAdmin           = errors.New("account has no active admin profile")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

var signInEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignInMessage is the text shown on the login form for a sign-in error.
func SignInMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "No account found with this email"
	case errors.Is(err, ErrWrongPassword):
		return "Incorrect password"
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, ErrUserDisabled):
		return "This account has been disabled"
	case errors.Is(err, ErrTooManyRequests):
		return "Too many failed attempts. Please try again later"
	case errors.Is(err, ErrNotAdmin):
		return "You do not have permission to access the admin dashboard"
	}
	return "Failed to sign in. Please try again"
}

type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
)

type SessionEvent struct {
	Type   SessionEventType
	UserID uint
	Email  string
	At     time.Time
}

// Session is a signed-in admin.
type Session struct {
	User    *model.AdminUser    `json:"user"`
	Profile *model.AdminProfile `json:"profile"`
	IsAdmin bool                `json:"is_admin"`
	Tokens  *util.TokenPair     `json:"tokens,omitempty"`
}

type SignInLimits struct {
	MaxFailures int
	Window      time.Duration
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	Me(userID uint) (*Session, error)
	CreateAdmin(email, password, displayName string) (*model.AdminUser, error)
	OnSessionChange(fn func(SessionEvent)) func()
}

type authService struct {
	userRepo      repository.AdminUserRepository
	profileRepo   repository.AdminProfileRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	limits        SignInLimits
	now           func() time.Time

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(SessionEvent)
}

func NewAuthService(
	userRepo repository.AdminUserRepository,
	profileRepo repository.AdminProfileRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
	limits SignInLimits,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		limits:        limits,
		now:           time.Now,
		listeners:     make(map[int]func(SessionEvent)),
	}
}

func failureKey(email string) string {
	return "signin_failures:" + email
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	if s.limits.MaxFailures <= 0 {
		return
	}
	if _, err := redis.IncrementCounter(ctx, failureKey(email), s.limits.Window); err != nil {
		logger.Warn("Failed to record sign-in failure", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
	}
}

func (s *authService) lockedOut(ctx context.Context, email string) bool {
	if s.limits.MaxFailures <= 0 {
		return false
	}
	n, err := redis.GetCounter(ctx, failureKey(email))
	if err != nil {
		logger.Warn("Failed to read sign-in failures", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return false
	}
	return n >= int64(s.limits.MaxFailures)
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("Admin sign-in attempt", map[string]interface{}{
		"email": email,
	})

	if !signInEmailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if s.lockedOut(ctx, email) {
		logger.Warn("Sign-in blocked: too many failures", map[string]interface{}{
			"email": email,
		})
		return nil, ErrTooManyRequests
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, email)
			logger.Warn("Sign-in failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Disabled {
		logger.Warn("Sign-in failed: user disabled", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrUserDisabled
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		s.recordFailure(ctx, email)
		logger.Warn("Sign-in failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrWrongPassword
	}

	if err := redis.DeleteKey(ctx, failureKey(email)); err != nil {
		logger.Warn("Failed to reset sign-in failures", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
	}

	profile, err := s.ensureProfile(user)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		logger.Warn("Sign-in refused: admin profile inactive", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrNotAdmin
	}

	now := s.now()
	if err := s.profileRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.Warn("Failed to record last login", map[string]interface{}{
			"user_id": user.ID,
		})
	} else {
		profile.LastLogin = &now
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(profile.Role), s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("Admin signed in", map[string]interface{}{
		"user_id": user.ID,
		"role":    profile.Role,
	})
	s.emit(SessionEvent{Type: SessionSignedIn, UserID: user.ID, Email: user.Email, At: now})

	return &Session{User: user, Profile: profile, IsAdmin: true, Tokens: tokens}, nil
}

// ensureProfile provisions an admin profile on a user's first sign-in.
func (s *authService) ensureProfile(user *model.AdminUser) (*model.AdminProfile, error) {
	profile, err := s.profileRepo.FindByUserID(user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to load admin profile", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	profile = &model.AdminProfile{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        model.RoleAdmin,
		Permissions: model.StringList{},
		IsActive:    true,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SignOut revokes the token for the rest of its lifetime.
func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return ErrInvalidToken
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining > 0 {
		if err := redis.BlacklistToken(ctx, token, remaining); err != nil {
			return err
		}
	}

	logger.Info("Admin signed out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	s.emit(SessionEvent{Type: SessionSignedOut, UserID: claims.UserID, Email: claims.Email, At: s.now()})
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil || claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}
	if revoked, err := redis.IsTokenBlacklisted(ctx, refreshToken); err != nil || revoked {
		return nil, ErrInvalidToken
	}

	session, err := s.Me(claims.UserID)
	if err != nil {
		return nil, err
	}
	if session.User.Disabled {
		return nil, ErrUserDisabled
	}
	if !session.IsAdmin {
		return nil, ErrNotAdmin
	}

	return util.GenerateTokenPair(session.User.ID, session.User.Email, string(session.Profile.Role), s.jwtSecret, s.accessExpiry, s.refreshExpiry)
}

// Me loads the user and profile behind a token. IsAdmin is false when the
// profile is missing or inactive.
func (s *authService) Me(userID uint) (*Session, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	session := &Session{User: user}
	profile, err := s.profileRepo.FindByUserID(userID)
	switch {
	case err == nil:
		session.Profile = profile
		session.IsAdmin = profile.IsActive
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return session, nil
}

func (s *authService) CreateAdmin(email, password, displayName string) (*model.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !signInEmailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, err
	}

	user := &model.AdminUser{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("Admin user created", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

// OnSessionChange registers fn for sign-in and sign-out events and returns a
// function that removes it.
func (s *authService) OnSessionChange(fn func(SessionEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *authService) emit(event SessionEvent) {
	s.mu.Lock()
	listeners := make([]func(SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Session listener panicked", nil, map[string]interface{}{
						"event": event.Type,
						"panic": r,
					})
				}
			}()
			fn(event)
		}()
	}
}
