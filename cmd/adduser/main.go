// Command adduser creates a login for the mobile app.
//
//	go run ./cmd/adduser -username ali -password secret -mobile
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"sklad-backend/internal/auth"
	"sklad-backend/internal/config"
	"sklad-backend/internal/database"
	"sklad-backend/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	username := flag.String("username", "", "login name")
	password := flag.String("password", "", "plain password, stored as a bcrypt hash")
	mobile := flag.Bool("mobile", true, "allow login from the mobile app")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := auth.CreateUser(ctx, db, auth.NewUser{
		Username:  *username,
		Password:  *password,
		MobileApp: *mobile,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create user")
	}
	log.Info().Uint("user_id", user.ID).Str("username", user.Username).Bool("mobile_app", *mobile).Msg("user created")
}
