// Command token mints a bearer token for local use against the API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var (
		user = flag.String("user", "", "user ID (uuid); a random one when empty")
		role = flag.String("role", string(auth.RoleUser), "admin, user or readonly")
		ttl  = flag.Duration("ttl", cfg.Auth.TokenTTL, "token lifetime")
	)

	flag.Parse()

	if cfg.Auth.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	userID := uuid.New()
	if *user != "" {
		if userID, err = uuid.Parse(*user); err != nil {
			slog.Error("invalid user ID", "user", *user, "error", err)
			os.Exit(1)
		}
	}

	token, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, *ttl).
		Issue(auth.Principal{UserID: userID, Role: auth.Role(*role)})
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "user %s, role %s, valid for %s\n", userID, *role, *ttl)
	fmt.Println(token)
}
