package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/service"
)

var (
	tokenSubject string
	tokenRole    string
	tokenExpiry  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the admin API",
	Long: `Sign a token with JWT_SECRET for calling the admin endpoints.

Examples:
  plannerctl token --subject ops
  plannerctl token --subject dashboard --role VIEWER --expiry 1h`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject (who is calling)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(models.RoleAdmin), "Role: ADMIN or VIEWER")
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 0, "Lifetime (default JWT_EXPIRATION)")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	expiry := tokenExpiry
	if expiry <= 0 {
		expiry = cfg.JWT.Expiration
	}

	auth := service.NewAuthService(nil, newLogger(cfg), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: expiry,
	})
	token, expiresAt, err := auth.IssueToken(models.IssueTokenRequest{
		Subject: tokenSubject,
		Role:    models.UserRole(strings.ToUpper(tokenRole)),
	})
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
	})
}
