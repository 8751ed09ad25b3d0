package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-imagegen-be/internal/constant"
	"ai-imagegen-be/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendWelcome(toEmail, fullName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	return nil
}

func (m *fakeMailer) sentTo(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sent {
		if s == email {
			return true
		}
	}
	return false
}

func TestRegisterGrantsStartingBalance(t *testing.T) {
	factory := newTestFactory(t)
	mails := &fakeMailer{}
	svc := NewAuthService(factory, mails, nil, nopLogger{})

	res, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ada@example.com", res.User.Email)

	assert.Equal(t, constant.DefaultCreditBalance, userBalance(t, factory, res.User.Id))

	// The welcome mail goes out asynchronously.
	assert.Eventually(t, func() bool { return mails.sentTo("ada@example.com") },
		time.Second, 10*time.Millisecond)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	factory := newTestFactory(t)
	svc := NewAuthService(factory, &fakeMailer{}, nil, nopLogger{})

	req := &dto.RegisterRequest{FullName: "Ada", Email: "ada@example.com", Password: "pw123456"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestLoginRoundTrip(t *testing.T) {
	factory := newTestFactory(t)
	svc := NewAuthService(factory, &fakeMailer{}, nil, nopLogger{})

	reg, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada", Email: "ada@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ada@example.com", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.Id, res.User.Id)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(res.Token, claims, func(tk *jwt.Token) (interface{}, error) {
		return []byte("default_secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.Id.String(), claims["user_id"])
}

func TestLoginWrongPassword(t *testing.T) {
	factory := newTestFactory(t)
	svc := NewAuthService(factory, &fakeMailer{}, nil, nopLogger{})

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada", Email: "ada@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ada@example.com", Password: "wrong horse",
	})
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "correct horse",
	})
	assert.Error(t, err)
}

func TestGetCredits(t *testing.T) {
	factory := newTestFactory(t)
	user := createTestUser(t, factory, 42)
	svc := NewUserService(factory)

	res, err := svc.GetCredits(context.Background(), user.Id)
	require.NoError(t, err)
	assert.Equal(t, 42, res.Credits)
	assert.Equal(t, user.Email, res.User.Email)
}
