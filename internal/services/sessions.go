package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionService signs and verifies the dashboard's admin session tokens.
type SessionService struct {
	secret []byte
	maxAge time.Duration
}

func NewSessionService(secret string, maxAge time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), maxAge: maxAge}
}

func (s *SessionService) MaxAge() time.Duration {
	return s.maxAge
}

// Issue signs an HS256 token carrying the admin's email.
func (s *SessionService) Issue(email, name string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"name":  name,
		"iat":   now.Unix(),
		"exp":   now.Add(s.maxAge).Unix(),
	})
	return token.SignedString(s.secret)
}

// Verify parses a token and returns the admin email it was issued to.
func (s *SessionService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}
