package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"dealradar/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Mints an admin bearer token for the /api/v1/admin endpoints.
func main() {
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	subject := flag.String("sub", "ops", "token subject")
	flag.Parse()

	cfg := config.Load()

	claims := jwt.MapClaims{
		"sub":  *subject,
		"role": "admin",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(*ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.AdminJWTSecret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	fmt.Println("Admin token:", signed)
}
