package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/introly/introly-backend/internal/config"
	"github.com/introly/introly-backend/internal/database"
	"github.com/introly/introly-backend/internal/logger"
	"github.com/introly/introly-backend/internal/model"
	"github.com/introly/introly-backend/internal/service"
	"github.com/introly/introly-backend/internal/store"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminStore := store.NewPostgresAdminStore(pool)
	authService := service.NewAuthService(cfg)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Tenant ID: ")
	tenantID, _ := reader.ReadString('\n')
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		tenantID = cfg.DefaultTenant
		fmt.Printf("Using default tenant %q\n", tenantID)
	}

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()
	password := strings.TrimSpace(string(bytePassword))
	if password == "" {
		fmt.Println("Error: Password is required")
		return
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.Admin{
		TenantID:     tenantID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := adminStore.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("Admin created with ID %d for tenant %q\n", admin.ID, admin.TenantID)
}
