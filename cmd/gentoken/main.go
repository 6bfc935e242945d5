// cmd/gentoken/main.go — Mints a development JWT for exercising the API.
// Usage: go run cmd/gentoken/main.go [role]   (role defaults to "admin")
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	role := "admin"
	if len(os.Args) > 1 {
		role = os.Args[1]
	}

	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "dev@pricing.local",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("sign error: %v", err)
	}
	fmt.Println(token)
}
