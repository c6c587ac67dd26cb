package cli

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"financaszen/internal/config"
	"financaszen/internal/google"
	"financaszen/internal/log"
	"financaszen/internal/storage"
)

// GoogleCalendar builds the OAuth config and the per-user event scheduler.
// Both are nil when no OAuth client is configured. Tokens go to the Drive
// app-data folder when a server Drive token is configured, otherwise to the
// record store.
func GoogleCalendar(ctx context.Context, logger *log.Logger, cfg *config.Config, store storage.Store) (*oauth2.Config, *google.Scheduler, error) {
	if !cfg.GoogleEnabled() {
		logger.Info("Google OAuth client not configured - calendar features disabled")
		return nil, nil, nil
	}
	clientJSON, err := google.ReadCredentials(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, nil, err
	}
	oauthCfg, err := google.CalendarConfig(clientJSON, cfg.GoogleOAuthRedirectURL)
	if err != nil {
		return nil, nil, err
	}

	var tokens google.TokenStore
	if cfg.DriveEnabled() {
		tokens, err = driveTokenStore(ctx, cfg, clientJSON)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Storing Google tokens in the Drive app-data folder")
	} else {
		tokens = google.NewRecordTokenStore(store)
		logger.Info("Storing Google tokens in the record store", log.FieldCollection, google.TokenCollection)
	}

	return oauthCfg, google.NewScheduler(tokens, google.NewCalendar(oauthCfg)), nil
}

func driveTokenStore(ctx context.Context, cfg *config.Config, clientJSON []byte) (*google.DriveTokenStore, error) {
	raw, err := google.ReadCredentials(cfg.GoogleDriveTokenJSON, cfg.GoogleDriveTokenFile)
	if err != nil {
		return nil, err
	}
	serverToken, err := google.LoadTokenJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("drive token: %w", err)
	}
	driveCfg, err := google.DriveConfig(clientJSON, cfg.GoogleOAuthRedirectURL)
	if err != nil {
		return nil, err
	}
	return google.NewDriveTokenStore(ctx, driveCfg, serverToken)
}
