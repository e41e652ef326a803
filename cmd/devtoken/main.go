// devtoken は開発用にオーナーIDのベアラートークンを発行します。
//
//	go run ./cmd/devtoken -owner 42 -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwtmw "stock_portal/internal/platform/jwt"
)

func main() {
	_ = godotenv.Load(".env")

	owner := flag.Uint("owner", 0, "owner id (>= 1)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	tok, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*owner)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		os.Exit(2)
	}
	fmt.Println(tok)
}
