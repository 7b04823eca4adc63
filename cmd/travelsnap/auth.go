package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"travelsnap/internal/render"
	"travelsnap/internal/session"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	email    string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the travel backend",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session token is stored",
	Long:  `Show whether a session token is stored. Claims are decoded for display only; the signature is not checked.`,
	RunE:  runStatus,
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
		cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ui := &cliUI{w: cmd.ErrOrStderr()}
	return ui.done(application.Explorer.Login(cmd.Context(), ui, email, pw))
}

func runRegister(cmd *cobra.Command, args []string) error {
	pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ui := &cliUI{w: cmd.ErrOrStderr()}
	return ui.done(application.Explorer.Register(cmd.Context(), ui, email, pw))
}

func runLogout(cmd *cobra.Command, args []string) error {
	ui := &cliUI{w: cmd.ErrOrStderr()}
	if err := application.Explorer.Logout(cmd.Context(), ui); err != nil {
		return ui.done(err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), render.SuccessStyle.Render("Logged out."))
	return nil
}

// statusResult is the JSON shape of the status command
type statusResult struct {
	LoggedIn  bool       `json:"logged_in"`
	UserID    string     `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	var result statusResult

	token, err := application.Sessions.Token(cmd.Context())
	switch {
	case errors.Is(err, session.ErrNoToken):
	case err != nil:
		return err
	default:
		result.LoggedIn = true
		if claims, err := session.DecodeClaims(token); err == nil {
			result.UserID = claims.UserID
			result.ExpiresAt = claims.ExpiresAt
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, result)
	}
	if !result.LoggedIn {
		fmt.Fprintln(out, render.DimStyle.Render("Not logged in."))
		return nil
	}

	fmt.Fprintln(out, render.SuccessStyle.Render("Logged in."))
	if result.UserID != "" {
		fmt.Fprintf(out, "User:    %s\n", result.UserID)
	}
	if result.ExpiresAt != nil {
		fmt.Fprintf(out, "Expires: %s\n", result.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// readPassword returns the --password flag or reads one line from in,
// prompting on prompt when in is a terminal.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if password != "" {
		return password, nil
	}

	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(prompt, "Password: ")
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
