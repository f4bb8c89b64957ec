package services

import (
	"errors"
	"time"

	"salonloyalty/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Authentication maps HS256 bearer tokens to a customer identity.
type Authentication struct {
	secret []byte
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Authentication{[]byte(secret)}, nil
}

func (authentication *Authentication) CreateToken(customer *models.CustomerFromAuth, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Email: customer.Email,
		Name:  customer.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customer.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(authentication.secret)
}

func (authentication *Authentication) Validate(token string) (*models.CustomerFromAuth, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return authentication.secret, nil
	}
	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, wrapf(errorx.Authn, ErrUnauthenticated, "%v", err)
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok || claims.Subject == "" {
		return nil, wrapf(errorx.Authn, ErrUnauthenticated, "invalid token claims")
	}

	return &models.CustomerFromAuth{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}
