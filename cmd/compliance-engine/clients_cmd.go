package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pravnik-mk/compliance-engine/internal/api"
	"github.com/pravnik-mk/compliance-engine/internal/models"
)

const apiKeyPrefix = "sk_live_"

func newClientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage API clients of upstream platforms",
	}
	cmd.AddCommand(newClientsCreateCmd())
	return cmd
}

type createdClient struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	ApiKey      string   `json:"api_key"`
	Permissions []string `json:"permissions"`
}

func newClientsCreateCmd() *cobra.Command {
	var permissions []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register an API client and print its key once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPermissions(permissions); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			repo, err := openStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer repo.Close()

			client := &models.ApiClient{
				Name:        args[0],
				ApiKey:      generateAPIKey(),
				IsActive:    true,
				Permissions: permissions,
			}
			if err := repo.CreateClient(ctx, client); err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), createdClient{
				ID:          client.ID,
				Name:        client.Name,
				ApiKey:      client.ApiKey,
				Permissions: client.Permissions,
			})
		},
	}

	cmd.Flags().StringSliceVar(&permissions, "permissions",
		[]string{api.PermissionRead, api.PermissionWrite}, "Granted permissions")
	return cmd
}

func generateAPIKey() string {
	return apiKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// checkPermissions rejects permission names the API never checks
func checkPermissions(perms []string) error {
	if len(perms) == 0 {
		return fmt.Errorf("at least one permission is required")
	}
	known := map[string]bool{
		api.PermissionRead:  true,
		api.PermissionWrite: true,
		"assessments:*":     true,
		"*":                 true,
	}
	for _, p := range perms {
		if !known[p] {
			return fmt.Errorf("unknown permission %q", p)
		}
	}
	return nil
}
