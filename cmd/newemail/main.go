// Command newemail mints one random account and prints the credentials as
// a CGI response, for the web hook that hands out fresh addresses. The
// account is durably in the store before anything reaches stdout; on any
// failure nothing is printed and the exit code is 1.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/doveauthd/internal/server/config"
	"github.com/dmitrijs2005/doveauthd/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/doveauthd/internal/server/services"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {

	db, err := repomanager.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := repomanager.NewSQLiteRepositoryManager()
	if err != nil {
		return err
	}
	if err := m.EnsureSchema(ctx, db); err != nil {
		return err
	}

	svc := services.NewAccountService(db, m, cfg)

	addr, password, err := svc.CreateRandomAccount(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(credentials{Email: addr, Password: password})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Content-Type: application/json\n\n%s\n", payload)
	return err
}

func main() {

	cfg := config.LoadConfig()

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
