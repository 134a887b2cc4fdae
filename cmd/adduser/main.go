package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/auth"
	"github.com/Varun5711/expense-tracker/internal/config"
	"github.com/Varun5711/expense-tracker/internal/logger"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
	"github.com/Varun5711/expense-tracker/internal/service"
	"github.com/Varun5711/expense-tracker/internal/storage"
	"golang.org/x/term"
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

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", envOr("DB_DRIVER", config.DriverSQLite), "Store backend: sqlite or postgres")
	dbPath := fs.String("db", envOr("SQLITE_PATH", "expenses.db"), "Path to SQLite database file")
	dsn := fs.String("dsn", os.Getenv("DB_PRIMARY_DSN"), "PostgreSQL connection string")
	cost := fs.Int("cost", auth.DefaultPasswordCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if *username == "" {
		missing = append(missing, "user")
	}
	if *email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> [-password <password>] [-driver sqlite|postgres] [-db <path>] [-dsn <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

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

	hasher, err := auth.NewPasswordHasher(*cost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, config.DatabaseConfig{
		Driver:          strings.ToLower(*driver),
		PrimaryDSN:      *dsn,
		SQLitePath:      *dbPath,
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	// No token is issued here, so the signing key is irrelevant.
	identity := service.NewIdentityService(store, hasher, auth.NewJWTManager("unused", time.Minute), logger.NewWithOutput("adduser", stderr))

	_, err = identity.Register(ctx, usermodel.RegisterRequest{
		Username: *username,
		Password: password,
		Email:    *email,
	})
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(stdout, "User %s created successfully\n", *username)
	return nil
}

// describe flattens a registration failure into a single readable error.
func describe(err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if appErr.Kind != apperr.KindValidation || appErr.Fields.Empty() {
		return errors.New(appErr.Message)
	}

	fields := make([]string, 0, len(appErr.Fields))
	for field := range appErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		msgs = append(msgs, appErr.Fields[field]...)
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
