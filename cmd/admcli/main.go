// Command admcli bootstraps an administrator account against the configured
// database. It prompts for a username and password and creates the account
// when it does not exist yet.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yzt-loan/loanadmin/internal/server/accounts"
	"github.com/yzt-loan/loanadmin/internal/server/config"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Enter admin username (default %q)\n> ", cfg.SuperAdminUser)
	username, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = cfg.SuperAdminUser
	}

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return fmt.Errorf("password must not be empty")
	}

	pg, err := store.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer pg.Close()

	if err := pg.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	acc := accounts.New(pg, cfg.MaxLoginAttempts, cfg.LockWindow)

	created, err := acc.EnsureSuperAdmin(ctx, username, string(password))
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("account %q already exists\n", username)
		return nil
	}

	fmt.Printf("account %q created\n", username)
	return nil
}
