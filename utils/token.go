package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenTTL = 30 * 24 * time.Hour

var (
	jwtSecretOnce sync.Once
	jwtSecretKey  []byte
)

func jwtSecret() []byte {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			if os.Getenv("APP_ENV") == "production" {
				log.Fatal("❌ JWT_SECRET is required in production")
			}
			log.Println("⚠️ JWT_SECRET not set, using the dev default")
			secret = "dev-secret-change-in-production"
		}
		jwtSecretKey = []byte(secret)
	})
	return jwtSecretKey
}

// Claims is the JWT payload for household members. user_id and home_id are
// what the auth middleware hangs on the request context.
type Claims struct {
	UserID string `json:"user_id"`
	HomeID string `json:"home_id"`
	jwt.RegisteredClaims
}

// CreateAccessToken signs a 30-day HS256 token for the given member.
func CreateAccessToken(userID, homeID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		HomeID: homeID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

// VerifyAccessToken parses and validates a token, rejecting anything not
// signed with our HMAC key.
func VerifyAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.HomeID == "" {
		return nil, errors.New("token missing identity claims")
	}
	return claims, nil
}

// GenerateInviteCode returns a short URL-safe code used to join a home.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
