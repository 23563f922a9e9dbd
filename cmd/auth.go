package cmd

import (
	"fmt"

	"gdupload/internal/gdata"
	"gdupload/pkg/config"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check credentials",
	Long:  `Verify the account credentials from .env and config.yaml.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with ClientLogin and report the result",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are configured",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	session := gdata.NewSession(ctx, newSender(cfg), cfg.YouTube.AuthHost, gdata.Credentials{
		User:     cfg.YouTubeUser,
		Password: cfg.YouTubePassword,
		ClientID: cfg.YouTubeClientID,
	})

	err = runWithSpinner("Logging in as "+cfg.YouTubeUser, func() error {
		_, tokenErr := session.Token()
		return tokenErr
	})
	if err != nil {
		fmt.Println(errorStyle.Render("✗ " + describeError(err)))
		return err
	}

	fmt.Println(successStyle.Render("✓ Logged in as " + cfg.YouTubeUser))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(infoStyle.Render("\nCredential Status:\n"))

	printStatus("User", cfg.YouTubeUser != "", "YOUTUBE_USER")
	printStatus("Password", cfg.YouTubePassword != "", "YOUTUBE_PASSWORD or YOUTUBE_PASSWORD_SECRET")
	if cfg.YouTubePasswordSecret != "" {
		fmt.Println(infoStyle.Render("  Secret: " + cfg.YouTubePasswordSecret))
	}
	printStatus("Client ID", cfg.YouTubeClientID != "", "YOUTUBE_CLIENT_ID")
	printStatus("Developer key", cfg.YouTubeDeveloperKey != "", "YOUTUBE_DEVELOPER_KEY")

	if cfg.GCS.Enabled {
		fmt.Println(successStyle.Render("✓ GCS: enabled"))
	} else {
		fmt.Println(infoStyle.Render("○ GCS: not enabled (optional)"))
	}

	fmt.Println()
	return cfg.Validate()
}

func printStatus(name string, ok bool, env string) {
	if ok {
		fmt.Println(successStyle.Render("✓ " + name + ": configured"))
		return
	}
	fmt.Println(errorStyle.Render("✗ " + name + ": missing " + env))
}
