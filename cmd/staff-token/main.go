// Command staff-token mints a staff JWT for the receipt API.
//
//	JWT_SECRET=... staff-token -id staff-1 -role manager -restaurant ocean-basket-grove
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/logger"
)

func main() {
	id := flag.String("id", "", "staff id (required)")
	role := flag.String("role", auth.RoleStaff, "role: staff, manager or admin")
	restaurant := flag.String("restaurant", "", "restaurant the staff member belongs to")
	ttl := flag.Duration("ttl", 0, "token lifetime (default JWT_DURATION)")
	flag.Parse()

	cfg := config.LoadConfig()
	log := logger.Init("development", "info")

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("❌ JWT_SECRET is not set")
	}
	switch *role {
	case auth.RoleStaff, auth.RoleManager, auth.RoleAdmin:
	default:
		log.Fatal().Str("role", *role).Msg("❌ Unknown role")
	}

	duration := cfg.JWTDuration
	if *ttl > 0 {
		duration = *ttl
	}

	token, expiresAt, err := auth.NewJWTService(cfg.JWTSecret, duration).GenerateToken(*id, *restaurant, *role)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to mint token")
	}

	fmt.Fprintln(os.Stdout, token)
	log.Info().Str("staff_id", *id).Str("role", *role).Str("expires", expiresAt.Format(time.RFC3339)).Msg("✅ Token issued")
}
