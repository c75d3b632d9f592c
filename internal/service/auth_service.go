package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cryptopulse/backend/internal/repository"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrInvalidCode   = errors.New("invalid or expired code")
)

// AuthService implements the SMS one-time-password login flow: a 6-digit
// code with a TTL, stored hashed, consumed on first successful
// verification.
type AuthService interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) error
}

type authService struct {
	otps   repository.OTPStore
	sender SMSSender
	ttl    time.Duration
}

func NewAuthService(otps repository.OTPStore, sender SMSSender, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &authService{otps: otps, sender: sender, ttl: ttl}
}

func (s *authService) SendCode(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneRequired
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	s.otps.Put(phone, hash, s.ttl)

	return s.sender.SendSMS(ctx, phone, "Your CryptoPulse code is: "+code)
}

func (s *authService) VerifyCode(ctx context.Context, phone, code string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" || code == "" {
		return ErrInvalidCode
	}

	hash, ok := s.otps.Get(phone)
	if !ok {
		return ErrInvalidCode
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(code)); err != nil {
		return ErrInvalidCode
	}

	// One-time use: a verified code is gone.
	s.otps.Delete(phone)
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
