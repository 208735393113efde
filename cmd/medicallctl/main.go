package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"MediCall/apperror"
	"MediCall/config"
	"MediCall/config/db"
	"MediCall/logger"
	"MediCall/migrations"
	"MediCall/models"
	"MediCall/repository"
	"MediCall/server"
	"MediCall/services"
	"MediCall/validation"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "medicallctl",
		Short:        "MediCall server and maintenance commands",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(seedUsersCmd())
	root.AddCommand(remindCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, !cfg.IsProduction())
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return server.Start(server.GetDefaultOptions(cfg))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes and backfill documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := db.Connect(cmd.Context(), cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer db.Disconnect(context.Background())
			return migrations.Run(cmd.Context(), database)
		},
	}
}

type userCreator interface {
	Create(ctx context.Context, data validation.Payload) (*models.User, error)
}

type account struct {
	name  string
	email string
	role  string
}

var defaultAccounts = []account{
	{name: "MediCall Admin", email: "admin@medicall.local", role: models.RoleAdmin},
	{name: "MediCall Supervisor", email: "supervisor@medicall.local", role: models.RoleSupervisor},
	{name: "MediCall Agent", email: "agent@medicall.local", role: models.RoleAgent},
}

// seedUsers creates the accounts that do not exist yet and reports how many
// were created.
func seedUsers(ctx context.Context, users userCreator, accounts []account, password string) (int, error) {
	created := 0
	for _, a := range accounts {
		_, err := users.Create(ctx, validation.Payload{
			"name": a.name, "email": a.email, "password": password, "role": a.role,
		})
		if apperror.IsConflict(err) {
			log.Info().Str("email", a.email).Msg("Account exists, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", a.email, err)
		}
		log.Info().Str("email", a.email).Str("role", a.role).Msg("Account created")
		created++
	}
	return created, nil
}

func seedUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Create the default admin, supervisor and agent accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := db.Connect(cmd.Context(), cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer db.Disconnect(context.Background())
			created, err := seedUsers(cmd.Context(), services.NewUserService(repository.NewUserRepo(database), nil), defaultAccounts, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d account(s)\n", created)
			return nil
		},
	}
	cmd.Flags().String("password", "changeme123", "Password for the seeded accounts")
	return cmd
}

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the medication reminder scan once",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetString("at")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := server.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			when := time.Now().In(app.Location)
			if at != "" {
				if when, err = time.ParseInLocation("2006-01-02 15:04", at, app.Location); err != nil {
					return fmt.Errorf("--at must look like 2006-01-02 15:04: %w", err)
				}
			}
			run, err := app.Reminders.RunDue(cmd.Context(), when.Truncate(time.Minute))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clock %s: %d patient(s), %d sent, %d failed\n", run.Clock, run.Patients, run.Sent, run.Failed)
			return nil
		},
	}
	cmd.Flags().String("at", "", "Scan as if it were this local time (2006-01-02 15:04)")
	return cmd
}
