package utils

import (
	"errors"
	"time"

	"marketplace/models"

	"github.com/golang-jwt/jwt"
)

// GenerateToken creates a signed HS256 token for the principal. Identity is
// issued elsewhere in production; this is used by tests and local tooling.
func GenerateToken(secret []byte, p models.Principal, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  p.ID,
		"role": p.Role,
		"name": p.Name,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(secret []byte, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// ParsePrincipal extracts the principal carried by a valid token.
func ParsePrincipal(secret []byte, tokenString string) (models.Principal, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return models.Principal{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Principal{}, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return models.Principal{}, errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ := claims["role"].(string)
	if role != models.RoleBuyer && role != models.RoleSeller {
		return models.Principal{}, errors.New("token does not contain a valid 'role' claim")
	}
	name, _ := claims["name"].(string)
	return models.Principal{ID: sub, Role: role, Name: name}, nil
}
