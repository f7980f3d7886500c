package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/poofware/attendance-service/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	// Database
	DBUrl string

	// Auth: tokens are issued by the auth service; we only verify.
	RSAPublicKey *rsa.PublicKey

	// Live-position grace period override (POSITION_MAX_AGE, e.g. "90s").
	PositionMaxAge time.Duration
}

// build-time override, set with -ldflags (same scheme as the other services)
var AppName string

func LoadConfig() *Config {
	//----------------------------------------------------------------------
	// 1) Validate required ldflags
	//----------------------------------------------------------------------
	if AppName == "" {
		utils.Logger.Fatal("AppName was not provided via ldflags")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// 2) Runtime environment vars
	//----------------------------------------------------------------------
	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appURL == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	//----------------------------------------------------------------------
	// 3) Token-verification key
	//----------------------------------------------------------------------
	pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if pubB64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	//----------------------------------------------------------------------
	// 4) Tunables
	//----------------------------------------------------------------------
	positionMaxAge := time.Duration(0)
	if raw := os.Getenv("POSITION_MAX_AGE"); raw != "" {
		positionMaxAge, err = time.ParseDuration(raw)
		if err != nil || positionMaxAge <= 0 {
			utils.Logger.Fatalf("POSITION_MAX_AGE invalid: %q", raw)
		}
	}

	utils.Logger.Infof("Loaded config for %s (%s)", AppName, env)

	return &Config{
		AppName:        AppName,
		AppPort:        appPort,
		AppUrl:         appURL,
		DBUrl:          dbURL,
		RSAPublicKey:   pubKey,
		PositionMaxAge: positionMaxAge,
	}
}

func (c *Config) Close() {}
