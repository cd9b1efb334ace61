package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/repository"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/config"
	"github.com/nexus-club/admin-api/pkg/database"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

func main() {
	username := flag.String("username", "", "login name of the new admin")
	displayName := flag.String("display-name", "", "name shown in the dashboard (defaults to username)")
	role := flag.String("role", string(models.AdminRoleAdmin), "superadmin or admin")
	password := flag.String("password", "", "initial password (or set NEXUS_ADMIN_PASSWORD)")
	migrate := flag.Bool("migrate", false, "apply pending migrations first")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("NEXUS_ADMIN_PASSWORD")
	}
	if *displayName == "" {
		*displayName = *username
	}

	if err := run(*username, *displayName, *role, *password, *migrate); err != nil {
		color.Red("create-admin: %v", err)
		os.Exit(1)
	}
}

func run(username, displayName, role, password string, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		color.Cyan("migrations applied")
	}

	svc := service.NewAdminService(repository.NewAdminRepository(db), nil, nil)
	admin, err := svc.Create(ctx, service.CreateAdminRequest{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
		Role:        models.AdminRole(role),
	})
	if err != nil {
		return describe(err)
	}

	color.Green("admin %q created (id=%d, role=%s)", admin.Username, admin.ID, admin.Role)
	return nil
}

func describe(err error) error {
	appErr := appErrors.FromError(err)
	if appErr.Status >= 500 {
		return err
	}
	return fmt.Errorf("%s", appErr.Message)
}
