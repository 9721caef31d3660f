package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gabaylakad/backend/internal/config"
	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	refreshKeyPrefix  = "refresh:"
	denylistKeyPrefix = "denylist:"

	// Rotation drops the superseded refresh digest by overwriting it with a
	// one-second TTL; the store interface has no delete.
	revokeTTL = time.Second
)

// Mailer sends the two transactional messages the auth flow needs.
type Mailer interface {
	SendVerificationCode(to, code string) error
	SendPasswordReset(to, token string) error
}

type AuthService struct {
	users    repository.UserRepository
	devices  repository.DeviceRepository
	sessions repository.SessionStore
	mailer   Mailer
	cfg      *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	devices repository.DeviceRepository,
	sessions repository.SessionStore,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:    users,
		devices:  devices,
		sessions: sessions,
		mailer:   mailer,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	ImpairmentLevel string
	Password        string
	BlindFullName   string
	BlindAge        int
	SerialNumber    string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AccessClaims is the decoded identity carried by an access token.
type AccessClaims struct {
	UserID uuid.UUID
	Email  string
	// Role is empty on tokens minted here; it is honored when present so
	// externally issued tokens can carry one.
	Role string
}

// Register creates an unverified user and binds the cane's serial number.
// A serial already bound to a different user is rejected; an unknown serial
// creates the device record on the spot.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if existing, err := s.users.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	device, err := s.devices.GetBySerialNumber(ctx, input.SerialNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if device != nil && device.UserID != nil {
		return nil, domain.ErrSerialTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, err := verificationCode()
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:               uuid.New(),
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		ImpairmentLevel:  input.ImpairmentLevel,
		PasswordHash:     string(hashed),
		BlindFullName:    input.BlindFullName,
		BlindAge:         input.BlindAge,
		VerificationCode: code,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if device == nil {
		device = &domain.Device{
			ID:           uuid.New(),
			SerialNumber: input.SerialNumber,
			UserID:       &user.ID,
		}
		if err := s.devices.Create(ctx, device); err != nil {
			return nil, err
		}
	} else {
		device.UserID = &user.ID
		if err := s.devices.Update(ctx, device); err != nil {
			return nil, err
		}
	}

	// Mail delivery is best effort; the code can be re-requested.
	if err := s.mailer.SendVerificationCode(user.Email, code); err != nil {
		zap.L().Warn("failed to send verification email",
			zap.String("email", user.Email), zap.Error(err))
	}

	return user, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if user.VerificationCode == "" || user.VerificationCode != code {
		return domain.ErrCodeInvalid
	}

	user.Verified = true
	user.VerificationCode = ""
	return s.users.Update(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if !user.Verified {
		return nil, domain.ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// issueSession mints an access token and a fresh refresh token, storing the
// refresh digest in the session store and mirroring it on the user row.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.signAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, err
	}
	digest := sha256Hex(refreshToken)

	err = s.sessions.Set(ctx, refreshKeyPrefix+digest, user.ID.String(), s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	user.RefreshTokenHash = digest
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) signAccessToken(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.AccessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyAccessToken checks the denylist before the signature, then returns
// the claims together with a renewed token carrying a fresh expiry. The
// presented token stays valid until its own expiry; renewal only extends
// the session for callers that adopt the replacement.
func (s *AuthService) VerifyAccessToken(ctx context.Context, raw string) (*AccessClaims, string, error) {
	if raw == "" {
		return nil, "", domain.ErrMissingToken
	}

	_, err := s.sessions.Get(ctx, denylistKeyPrefix+sha256Hex(raw))
	if err == nil {
		return nil, "", domain.ErrTokenRevoked
	}
	if !errors.Is(err, repository.ErrKeyNotFound) {
		return nil, "", err
	}

	claims, err := s.parseAccessToken(raw)
	if err != nil {
		return nil, "", err
	}

	renewed, err := s.signAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return nil, "", err
	}

	return claims, renewed, nil
}

func (s *AuthService) parseAccessToken(raw string) (*AccessClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return &AccessClaims{UserID: userID, Email: email, Role: role}, nil
}

// Refresh rotates the presented refresh token: the new digest is stored
// first, then the old entry is overwritten with a one-second TTL. The two
// writes are not transactional; both digests are valid for the instant
// between them.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*AuthResult, error) {
	if rawRefresh == "" {
		return nil, domain.ErrRefreshInvalid
	}

	oldDigest := sha256Hex(rawRefresh)
	userIDStr, err := s.sessions.Get(ctx, refreshKeyPrefix+oldDigest)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, domain.ErrRefreshInvalid
		}
		return nil, err
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, domain.ErrRefreshInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, refreshKeyPrefix+oldDigest, userIDStr, revokeTTL); err != nil {
		zap.L().Warn("failed to expire rotated refresh token",
			zap.String("userId", userIDStr), zap.Error(err))
	}

	return result, nil
}

// Logout denylists the access token for the remainder of its lifetime and
// expires the refresh session if one is presented. A token whose expiry
// claim cannot be decoded is reported as an error rather than denylisted,
// mirroring the behavior of the system this replaces.
func (s *AuthService) Logout(ctx context.Context, rawAccess, rawRefresh string) error {
	if rawAccess == "" {
		return domain.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(rawAccess, claims)
	if err != nil {
		return domain.ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.ErrInvalidToken
	}

	remaining := time.Until(exp.Time)
	if remaining < revokeTTL {
		remaining = revokeTTL
	}

	err = s.sessions.Set(ctx, denylistKeyPrefix+sha256Hex(rawAccess), "1", remaining)
	if err != nil {
		return err
	}

	if rawRefresh != "" {
		digest := sha256Hex(rawRefresh)
		if err := s.sessions.Set(ctx, refreshKeyPrefix+digest, "1", revokeTTL); err != nil {
			zap.L().Warn("failed to expire refresh token on logout", zap.Error(err))
		}
	}

	return nil
}

// ChangePassword swaps the stored hash. Existing access and refresh tokens
// stay valid; they expire on their own schedule.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashed)
	return s.users.Update(ctx, user)
}

// ForgotPassword always reports success so callers cannot probe which
// emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := randomToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(s.cfg.ResetTokenTTL)
	user.ResetTokenHash = sha256Hex(token)
	user.ResetTokenExpiresAt = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		zap.L().Warn("failed to send password reset email",
			zap.String("email", user.Email), zap.Error(err))
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return domain.ErrResetInvalid
	}

	user, err := s.users.GetByResetTokenHash(ctx, sha256Hex(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrResetInvalid
		}
		return err
	}

	if user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		return domain.ErrResetInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashed)
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	return s.users.Update(ctx, user)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// randomToken returns 32 random bytes hex-encoded (64 characters).
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func sha256Hex(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
