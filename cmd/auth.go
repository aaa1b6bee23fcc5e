package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tuniverse/tvx/internal/server"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
	"github.com/tuniverse/tvx/internal/tokens"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs the user in via the backend-hosted flow: a local HTTP
// server receives the redirect, the browser opens the backend login URL, and
// the delivered token set is persisted.
//
// With --direct the authorization-code flow runs against Spotify itself using
// the credentials from config.toml.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("direct") {
		return r.authLoginDirect(ctx, cmd)
	}

	handler := server.NewCallbackHandler()
	token, err := r.runCallbackServer(handler, r.client.LoginURL(), cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	if err := r.store.Save(*token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	r.writePlainln("✓ Signed in as %s", token.Label())
	r.writePlain("You can now use: tvx passport show\n")

	return nil
}

// authLoginDirect runs the OAuth2 authorization-code flow against Spotify.
func (r *Runner) authLoginDirect(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	authenticator, err := services.NewSpotifyAuthenticator(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify authenticator: %w", err)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewExchangeHandler(authenticator.Config(), state)
	token, err := r.runCallbackServer(handler, authenticator.AuthURL(state), cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	if err := r.store.Save(*token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Signed in as %s\n", token.Label())

	return nil
}

// runCallbackServer hosts the login callback locally, opens the browser and
// waits for the flow to deliver a token.
func (r *Runner) runCallbackServer(handler *server.CallbackHandler, authURL string, noBrowser bool) (*tokens.Token, error) {
	router := server.NewBasicRouter()
	router.Use(server.LogRequests(r.logger))
	router.Handler(handler)

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting login callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if noBrowser {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify sign-in...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// AuthStatus shows the stored session and checks backend reachability.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	token := r.store.Restore("")

	if token.Present() {
		r.writePlain("Session: ✓ Signed in as %s\n", token.Label())
		if claims, err := token.AppClaims(); err == nil {
			if sub, ok := claims["sub"].(string); ok {
				r.writePlain("Subject: %s\n", sub)
			}
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				r.writePlain("App token expires: %s\n", exp.Format(time.RFC3339))
			}
		}
		if token.RefreshToken != "" {
			r.writePlain("Refresh: ✓ Refresh token stored\n")
		} else {
			r.writePlain("Refresh: ✗ No refresh token\n")
		}
	} else {
		r.writePlain("Session: ✗ Signed out\n")
	}

	resp, err := r.api.Get(ctx, "/")
	if err != nil {
		return fmt.Errorf("%w: backend unavailable: %v", shared.ErrServiceUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		r.writePlain("Backend: ✓ Reachable at %s\n", r.config.Backend.BaseURL)
		return nil
	}

	return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
}

// AuthLogout destroys the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthRefresh exchanges the stored refresh token for a new access token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	token := r.store.Restore("")
	if !token.Present() {
		return fmt.Errorf("%w: run 'tvx auth login' first", shared.ErrNotAuthenticated)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("%w: session has no refresh token", shared.ErrNoRefreshToken)
	}

	r.logger.Info("refreshing access token")

	refreshed, err := r.client.Refresh(ctx, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	// Save merges absent fields from the stored token, so the refresh
	// token and identity survive the exchange.
	next := tokens.Token{AccessToken: refreshed.AccessToken}
	if err := r.store.Save(next); err != nil {
		return fmt.Errorf("failed to persist refreshed session: %w", err)
	}

	return r.writePlain("✓ Access token refreshed\n")
}

// AuthToken restores a session from a pasted redirect URL or fragment, for
// environments where the local callback server cannot be reached.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	fragment := cmd.StringArg("fragment")
	if fragment == "" {
		return fmt.Errorf("%w: paste the redirect URL or its fragment", shared.ErrMissingArgument)
	}

	token := r.store.Restore(fragment)
	if !token.Present() {
		return fmt.Errorf("%w: no access token found in input", shared.ErrInvalidInput)
	}

	r.writePlain("✓ Signed in as %s\n", token.Label())
	return nil
}
