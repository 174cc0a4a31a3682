// ABOUTME: Admin CLI for hearth account and token management
// ABOUTME: Operates directly on the configured store; no running server required

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/hearthside/hearth/internal/auth"
	"github.com/hearthside/hearth/internal/config"
	"github.com/hearthside/hearth/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "create-user":
		err = cmdCreateUser(args)
	case "list-users":
		err = cmdListUsers()
	case "mint-token":
		err = cmdMintToken(args)
	case "promote":
		err = cmdPromote(args)
	case "health":
		err = cmdHealth()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("hearth-admin - manage hearth accounts and tokens")
	fmt.Println()
	fmt.Println("Usage: hearth-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  create-user <username> <email>   Create an account (prompts for password)")
	fmt.Println("  list-users                       List all accounts")
	fmt.Println("  mint-token <username>            Issue an access token for a user")
	fmt.Println("  promote <username>               Grant superuser privileges")
	fmt.Println("  health                           Check server health")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  HEARTH_CONFIG      Config file path (default: hearth.yaml)")
	fmt.Println("  HEARTH_SERVER_URL  Server base URL for health (default: http://localhost:8000)")
	fmt.Println()
}

// loadConfig reads the config file named by HEARTH_CONFIG
func loadConfig() (*config.Config, error) {
	path := os.Getenv("HEARTH_CONFIG")
	if path == "" {
		path = "hearth.yaml"
	}
	return config.Load(path)
}

// openStore opens the configured SQLite store for direct admin access
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("HEARTH_DB_PATH"); envPath != "" {
		dbPath = envPath
	}
	return store.NewSQLiteStore(dbPath)
}

// promptPassword reads a password from the terminal without echoing it
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(password), nil
}

func cmdCreateUser(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: hearth-admin create-user <username> <email>")
	}
	username, email := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	password, err := promptPassword()
	if err != nil {
		return err
	}

	svc := auth.NewService(s, nil)
	user, err := svc.Register(context.Background(), auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}

	color.Green("Created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func cmdListUsers() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	users, err := s.ListUsers(context.Background(), 0)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tEMAIL\tACTIVE\tSUPERUSER\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n",
			u.Username, u.Email, u.IsActive, u.IsSuperuser,
			u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func cmdMintToken(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: hearth-admin mint-token <username>")
	}
	username := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := s.GetUserByUsername(context.Background(), username)
	if err != nil {
		return err
	}

	issuer := auth.NewJWTIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	token, err := issuer.Issue(user.Username, user.ID)
	if err != nil {
		return err
	}

	color.Green("Token for %s (expires in %s):\n", user.Username, cfg.Auth.TokenTTL)
	fmt.Println(token)
	return nil
}

func cmdPromote(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: hearth-admin promote <username>")
	}
	username := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	user.IsSuperuser = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.UpdateUser(ctx, user); err != nil {
		return err
	}

	color.Green("Promoted %s to superuser\n", user.Username)
	return nil
}

func cmdHealth() error {
	baseURL := os.Getenv("HEARTH_SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: %s: %s", resp.Status, body)
	}

	color.Green("healthy: %s\n", body)
	return nil
}
