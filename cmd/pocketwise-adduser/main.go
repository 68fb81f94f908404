// Command pocketwise-adduser creates a user directly in the database, either
// from a password or from a hash exported by an earlier deployment.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/YouWantToPinch/pocketwise-api/internal/auth"
	"github.com/YouWantToPinch/pocketwise-api/internal/config"
	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/sql/schema"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore connects to the configured database and migrates it.
// Tests swap it for an in-memory store.
var openStore = func(ctx context.Context, envPath string) (database.Store, func() error, error) {
	conf, err := config.Load(envPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(ctx, conf.DB.Driver, conf.DB.ConnectionString(), database.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db, schema.FS); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return database.NewStore(db), db.Close, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pocketwise-adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name, also usable to log in")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	hashFlag := fs.String("hash", "", "Existing argon2id or bcrypt hash to import instead of a password")
	envPath := fs.String("env", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: pocketwise-adduser -name <name> -email <email> [-password <password> | -hash <hash>] [-env <path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}
	if *passwordFlag != "" && *hashFlag != "" {
		return fmt.Errorf("give either -password or -hash, not both")
	}

	hash := strings.TrimSpace(*hashFlag)
	if hash != "" {
		if !auth.ValidHash(hash) {
			return fmt.Errorf("-hash is not an argon2id or bcrypt hash")
		}
	} else {
		password := *passwordFlag
		if password == "" {
			fmt.Fprint(stdout, "Password: ")
			var err error
			password, err = readPassword(stdin)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Fprintln(stdout)
		}
		if strings.TrimSpace(password) == "" {
			return fmt.Errorf("password cannot be empty")
		}
		if err := auth.CheckPasswordStrength(password); err != nil {
			return err
		}
		var err error
		hash, err = auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, *envPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStore()

	normalized := strings.ToLower(strings.TrimSpace(*email))
	var user database.User
	err = store.ExecTx(ctx, func(q database.Querier) error {
		exists, err := q.UserExists(ctx, database.UserExistsParams{Email: normalized, Name: *name})
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("user %s already exists", *name)
		}
		user, err = q.CreateUser(ctx, database.CreateUserParams{
			Name:           *name,
			Email:          normalized,
			HashedPassword: hash,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Name, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// not a terminal: pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
