package service

import (
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT signs and verifies HS256 access tokens whose subject is the user id.
type JWT struct {
	secret []byte
	now    func() time.Time
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

// Generate issues a token for userID valid for ttl.
func (j *JWT) Generate(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": "authenticated",
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Parse validates tokenString and returns the user id in its subject.
// Every failure wraps domain.ErrUnauthorized.
func (j *JWT) Parse(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, fmt.Errorf("%w: empty token", domain.ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", domain.ErrUnauthorized)
	}
	return userID, nil
}
