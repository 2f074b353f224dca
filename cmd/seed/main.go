// Command seed fills the configured database with demo board data.
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"

	"businessboard/backend/config"
	"businessboard/backend/database"
	"businessboard/backend/utils"
)

func main() {
	users := flag.Int("users", 5, "generated users besides John Doe")
	businesses := flag.Int("businesses", 50, "random businesses to create")
	seed := flag.Uint64("seed", 0, "random seed (0 uses the clock)")
	flag.Parse()

	cfg := config.Load()
	cfg.ConfigureLogging()
	if cfg.Store != "postgres" {
		log.Fatal("seed needs STORE=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: 2, PreferIPv4: cfg.DBPreferIPv4})
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}

	hash, err := utils.HashPassword(cfg.DefaultUserPassword)
	if err != nil {
		log.WithError(err).Fatal("hash password")
	}
	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	rnd := rand.New(rand.NewPCG(s, s>>1))
	opts := database.SeedOptions{Users: *users, Businesses: *businesses, PasswordHash: hash}
	if err := database.Seed(ctx, database.NewPGStore(pool), rnd, opts); err != nil {
		log.WithError(err).Fatal("seed")
	}
}
