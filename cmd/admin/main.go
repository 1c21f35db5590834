// Command admin performs operator tasks against the record store and the
// admin credentials.
//
//	admin -reset                     # delete every player and record
//	admin -token ops@club -ttl 1h    # mint an admin bearer token
//	admin -hash-key 's3cret'         # bcrypt hash for admin_key_hash
//	admin -gen-secret                # random secret for jwt/webhook signing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/config"
	"github.com/Shimizu-Technology/playertrack-api/internal/database"
	"github.com/Shimizu-Technology/playertrack-api/internal/middleware"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/webhook"
)

func main() {
	reset := flag.Bool("reset", false, "delete every player and performance record")
	tokenFor := flag.String("token", "", "mint an admin JWT for this subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "lifetime of the minted token")
	hashKey := flag.String("hash-key", "", "print the bcrypt hash of this admin key")
	genSecret := flag.Bool("gen-secret", false, "print a random secret")
	flag.Parse()

	switch {
	case *hashKey != "":
		hash, err := middleware.HashAdminKey(*hashKey)
		if err != nil {
			log.Fatalf("❌ Failed to hash key: %v", err)
		}
		fmt.Println(hash)

	case *genSecret:
		secret, err := webhook.GenerateSecret()
		if err != nil {
			log.Fatalf("❌ Failed to generate secret: %v", err)
		}
		fmt.Println(secret)

	case *tokenFor != "":
		cfg := mustLoad()
		token, err := middleware.GenerateJWT(*tokenFor, middleware.RoleAdmin, cfg.JWTSecret, *ttl)
		if err != nil {
			log.Fatalf("❌ Failed to sign token: %v", err)
		}
		fmt.Println(token)

	case *reset:
		cfg := mustLoad()
		db, err := database.New(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.RunMigrations(); err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}
		if err := db.ResetAll(context.Background()); err != nil {
			log.Fatalf("❌ Reset failed: %v", err)
		}
		log.Println("🧹 Record store reset")

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func mustLoad() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	return cfg
}
