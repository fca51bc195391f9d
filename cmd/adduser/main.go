// Command adduser creates an administrator account. The API has no
// self-service signup; accounts that may mutate the catalog are provisioned
// from the command line by an operator.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/cinemahub/booking-api/internal/config"
	"github.com/cinemahub/booking-api/internal/database"
	"github.com/cinemahub/booking-api/internal/repository"
)

func main() {
	name := flag.String("name", "", "display name of the new user")
	email := flag.String("email", "", "login email of the new user")
	password := flag.String("password", "", "plain password, hashed before storage")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		log.Fatal("usage: adduser -name NAME -email EMAIL -password PASSWORD")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := repository.NewUserRepo(db).Create(ctx, *name, *email, *password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	log.Printf("created user %d (%s)", id, *email)
}
