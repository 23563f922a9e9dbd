package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"gdupload/internal/gdata"
	"gdupload/internal/storage"
	"gdupload/pkg/config"
	"gdupload/pkg/httputil"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
)

func interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

// loadConfig loads and validates the configuration, prompting for the
// password when none is configured and a terminal is attached.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.YouTubePassword == "" && interactive() {
		if err := huh.NewInput().
			Title("Password for " + cfg.YouTubeUser).
			EchoMode(huh.EchoModePassword).
			Value(&cfg.YouTubePassword).
			Run(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSender builds the transport shared by the API client and ClientLogin.
func newSender(cfg *config.Config) *httputil.Client {
	httpClient := &http.Client{}
	if cfg.YouTube.TimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(cfg.YouTube.TimeoutSeconds) * time.Second
	}
	return httputil.NewClient(httpClient)
}

func buildClient(ctx context.Context, cfg *config.Config) *gdata.Client {
	sender := newSender(cfg)

	session := gdata.NewSession(ctx, sender, cfg.YouTube.AuthHost, gdata.Credentials{
		User:     cfg.YouTubeUser,
		Password: cfg.YouTubePassword,
		ClientID: cfg.YouTubeClientID,
	})

	return gdata.NewClient(sender, session, gdata.Options{
		User:         cfg.YouTubeUser,
		ClientID:     cfg.YouTubeClientID,
		DeveloperKey: cfg.YouTubeDeveloperKey,
		BaseHost:     cfg.YouTube.BaseHost,
		UploadHost:   cfg.YouTube.UploadHost,
		Secure:       !cfg.YouTube.Insecure,
	})
}

// buildResolver returns the payload resolver and a cleanup func closing the
// GCS client if one was opened.
func buildResolver(cfg *config.Config) (*storage.Resolver, func()) {
	var gcs *storage.GCSStorage
	var newGCS func(ctx context.Context) (storage.Provider, error)
	if cfg.GCS.Enabled {
		newGCS = func(ctx context.Context) (storage.Provider, error) {
			s, err := storage.NewGCSStorage(ctx, storage.GCSOptions{
				CredentialsFile: cfg.GoogleCredentialsFile,
				Endpoint:        cfg.GCS.Endpoint,
			})
			if err != nil {
				return nil, err
			}
			gcs = s
			return s, nil
		}
	}

	resolver := storage.NewResolver(storage.NewLocalStorage(cfg.Storage.BaseDir), newGCS)
	cleanup := func() {
		if gcs != nil {
			_ = gcs.Close()
		}
	}
	return resolver, cleanup
}

func runWithSpinner(title string, fn func() error) error {
	if verbose || !interactive() {
		return fn()
	}

	var err error
	if spinErr := spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run(); spinErr != nil {
		return spinErr
	}
	return err
}

func describeError(err error) string {
	var authErr *gdata.AuthenticationError
	var uploadErr *gdata.UploadError
	switch {
	case errors.As(err, &authErr):
		return "Authentication failed: " + authErr.Message
	case errors.As(err, &uploadErr):
		return "Request rejected:\n" + uploadErr.Message
	default:
		return err.Error()
	}
}
