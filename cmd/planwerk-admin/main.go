// Package main is the entry point for the Planwerk admin CLI.
// The tool runs administrative commands against the configured storage
// backend without going through the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/config"
	"github.com/planwerk/planwerk/internal/service"
	"github.com/planwerk/planwerk/internal/store"
	"github.com/planwerk/planwerk/internal/store/firestore"
	"github.com/planwerk/planwerk/internal/store/jsonstore"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Planwerk Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "promote":
		runPromote(os.Args[2:])

	case "users":
		runUsers(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runPromote(args []string) {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)
	email := fs.String("email", "", "email of the user to promote")
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "Error: --email is required")
		fs.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st := mustOpenStore(ctx, *configPath)
	defer st.Close()

	userService := service.NewUserService(st, zerolog.Nop())
	user, err := userService.PromoteByEmail(ctx, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User %s (%s) is now an administrator.\n", user.Username, user.Email)
}

func runUsers(args []string) {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st := mustOpenStore(ctx, *configPath)
	defer st.Close()

	users, err := st.GetAllUsers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-36s  %-20s  %-30s  %s\n", "ID", "USERNAME", "EMAIL", "ADMIN")
	for _, u := range users {
		fmt.Printf("%-36s  %-20s  %-30s  %v\n", u.ID, u.Username, u.Email, u.IsAdmin)
	}
}

func mustOpenStore(ctx context.Context, configPath string) store.Store {
	cfg := config.MustLoad(configPath)

	var (
		st  store.Store
		err error
	)
	if cfg.Store.Backend == "cloud" {
		st, err = firestore.New(ctx, cfg.Store.ProjectID, cfg.Store.CredentialsPath, zerolog.Nop())
	} else {
		st, err = jsonstore.New(cfg.Store.UsersPath, cfg.Store.ProjectsPath, zerolog.Nop())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store: %v\n", err)
		os.Exit(1)
	}
	return st
}

func printUsage() {
	fmt.Println(`Planwerk Admin CLI

Usage:
  planwerk-admin <command> [arguments]

Commands:
  promote     Promote a user to administrator by email
  users       List all users
  version     Print version information
  help        Show this help message

Examples:
  planwerk-admin promote --email admin@example.com
  planwerk-admin users --config ./configs/config.yaml`)
}
