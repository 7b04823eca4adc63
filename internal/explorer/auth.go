package explorer

import (
	"context"
	"strings"

	"travelsnap/internal/backend"
	"travelsnap/internal/render"
)

// Notices shown by the auth flow
const (
	MsgLoginRequired = "Please log in first!"
	MsgLoginOK       = "Login successful!"
	MsgRegisterOK    = "Registration successful! You can now log in."
	MsgLoginFailed   = "Invalid credentials"
	MsgRegisterFail  = "Failed to register user"
	MsgMissingFields = "Email and password are required."
)

// Index routes the entry point: straight to the map with a session, to the
// login view without one.
func (e *Explorer) Index(ctx context.Context, ui UI) {
	if e.sessions.HasToken(ctx) {
		ui.Navigate(ViewMap)
		return
	}
	ui.Navigate(ViewLogin)
}

// RequireSession guards views that need a login. Without a token it shows a
// notice, navigates to login and reports false.
func (e *Explorer) RequireSession(ctx context.Context, ui UI) bool {
	if e.sessions.HasToken(ctx) {
		return true
	}
	ui.Alert(MsgLoginRequired)
	ui.Navigate(ViewLogin)
	return false
}

// Login exchanges credentials for a token and stores it. On failure the
// stored token is left as it was and no navigation happens.
func (e *Explorer) Login(ctx context.Context, ui UI, identifier, password string) error {
	creds, err := credentials(ui, identifier, password)
	if err != nil {
		return err
	}

	resp, err := e.api.Login(ctx, creds)
	if err != nil {
		return e.fail(ui, "login", err, MsgLoginFailed)
	}
	if err := e.sessions.SetToken(ctx, resp.AccessToken); err != nil {
		return e.fail(ui, "login", err, MsgLoginFailed)
	}

	e.log.Info("User logged in", "email", creds.Email)
	ui.Alert(MsgLoginOK)
	ui.Navigate(ViewMap)
	return nil
}

// Register creates an account and sends the user to the login view
func (e *Explorer) Register(ctx context.Context, ui UI, identifier, password string) error {
	creds, err := credentials(ui, identifier, password)
	if err != nil {
		return err
	}

	if err := e.api.Register(ctx, creds); err != nil {
		return e.fail(ui, "register", err, MsgRegisterFail)
	}

	e.log.Info("User registered", "email", creds.Email)
	ui.Alert(MsgRegisterOK)
	ui.Navigate(ViewLogin)
	return nil
}

// Logout clears the token and the per-user view state, then navigates to
// login. Cards rendered before logout no longer accept actions.
func (e *Explorer) Logout(ctx context.Context, ui UI) error {
	if err := e.sessions.ClearToken(ctx); err != nil {
		e.log.Error("Failed to clear session", "error", err)
		return err
	}

	e.mu.Lock()
	e.state.Cards = []render.Card{}
	e.state.Generation++
	e.state.Favorites = nil
	e.state.FavoritesGeneration++
	e.mu.Unlock()

	ui.Navigate(ViewLogin)
	return nil
}

func credentials(ui UI, identifier, password string) (backend.Credentials, error) {
	creds := backend.Credentials{
		Email:    strings.TrimSpace(identifier),
		Password: strings.TrimSpace(password),
	}
	if creds.Email == "" || creds.Password == "" {
		ui.Alert(MsgMissingFields)
		return creds, ErrEmptyInput
	}
	return creds, nil
}
