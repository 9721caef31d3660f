package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	firstName string
	lastName  string
	email     string
	password  string
	verified  bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		firstName: "Test",
		lastName:  "Guardian",
		email:     fmt.Sprintf("test_%s@example.com", uuid.New().String()[:8]),
		password:  "testpassword123",
		verified:  true,
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Unverified leaves the account pending email verification
func (b *UserBuilder) Unverified() *UserBuilder {
	b.verified = false
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    b.firstName,
		LastName:     b.lastName,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		Verified:     b.verified,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// TokenResponse matches the API auth response
type TokenResponse struct {
	Message      string  `json:"message"`
	Token        *string `json:"token"`
	RefreshToken string  `json:"refreshToken"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Login authenticates an existing user via the API and returns the
// access and refresh tokens.
func Login(t *testing.T, ts *TestServer, email, password string) (string, string) {
	t.Helper()

	reqBody := map[string]string{
		"email":    email,
		"password": password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if tokenResp.Token == nil {
		t.Fatalf("login response carried no token")
	}

	return *tokenResp.Token, tokenResp.RefreshToken
}

// BuildAndLogin creates a verified user directly in the database and
// logs in through the API.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	token, _ := Login(t, ts, user.Email, password)
	return user, token
}

// DeviceBuilder creates test devices with a builder pattern
type DeviceBuilder struct {
	serialNumber string
	nickname     string
	owner        *domain.User
}

// NewDeviceBuilder creates a new DeviceBuilder with default values
func NewDeviceBuilder() *DeviceBuilder {
	return &DeviceBuilder{
		serialNumber: fmt.Sprintf("GL-%s", uuid.New().String()[:12]),
		nickname:     "Test Cane",
	}
}

// WithSerialNumber sets the serial number
func (b *DeviceBuilder) WithSerialNumber(serial string) *DeviceBuilder {
	b.serialNumber = serial
	return b
}

// WithOwner binds the device to a user
func (b *DeviceBuilder) WithOwner(user *domain.User) *DeviceBuilder {
	b.owner = user
	return b
}

// Build creates the device in the database
func (b *DeviceBuilder) Build(t *testing.T, db *gorm.DB) *domain.Device {
	t.Helper()

	device := &domain.Device{
		ID:           uuid.New(),
		SerialNumber: b.serialNumber,
		Nickname:     b.nickname,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if b.owner != nil {
		device.UserID = &b.owner.ID
	}

	if err := db.Create(device).Error; err != nil {
		t.Fatalf("failed to create device: %v", err)
	}

	return device
}

// LocationBuilder creates test location samples
type LocationBuilder struct {
	device     *domain.Device
	lat        float64
	lng        float64
	recordedAt time.Time
}

// NewLocationBuilder creates a new LocationBuilder with default values
func NewLocationBuilder() *LocationBuilder {
	return &LocationBuilder{
		lat:        10.3157,
		lng:        123.8854,
		recordedAt: time.Now(),
	}
}

// ForDevice sets the owning device
func (b *LocationBuilder) ForDevice(device *domain.Device) *LocationBuilder {
	b.device = device
	return b
}

// At sets the coordinates
func (b *LocationBuilder) At(lat, lng float64) *LocationBuilder {
	b.lat = lat
	b.lng = lng
	return b
}

// RecordedAt sets the sample timestamp
func (b *LocationBuilder) RecordedAt(ts time.Time) *LocationBuilder {
	b.recordedAt = ts
	return b
}

// Build creates the sample in the database
func (b *LocationBuilder) Build(t *testing.T, db *gorm.DB) *domain.LocationSample {
	t.Helper()

	if b.device == nil {
		t.Fatalf("LocationBuilder requires a device")
	}

	sample := &domain.LocationSample{
		ID:         uuid.New(),
		DeviceID:   b.device.ID,
		Latitude:   b.lat,
		Longitude:  b.lng,
		RecordedAt: b.recordedAt,
		CreatedAt:  time.Now(),
	}

	if err := db.Create(sample).Error; err != nil {
		t.Fatalf("failed to create location sample: %v", err)
	}

	return sample
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
