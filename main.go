package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nebulines/cmd"
	"nebulines/config"
	"nebulines/database"
	"nebulines/server"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	// Development helper for calling the API
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := handleTokenCommand(); err != nil {
			log.Fatal("Token error: ", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: nebulines migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleTokenCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: nebulines token <user-uuid> [ttl]")
	}

	userID, err := uuid.Parse(os.Args[2])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	ttl := 24 * time.Hour
	if len(os.Args) > 3 {
		if ttl, err = time.ParseDuration(os.Args[3]); err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
	}

	token, err := server.IssueToken(config.Get().JWTSecret, userID, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
