package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BinitGoswami/my-placement/internal/client"
	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/ui"
)

var loginCmd = &cobra.Command{
	Use:         "login",
	Short:       "Sign in to the placement service",
	GroupID:     "auth",
	Args:        cobra.NoArgs,
	Annotations: screenOf(model.LoginScreen),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		passwordStdin, _ := cmd.Flags().GetBool("password-stdin")

		in := bufio.NewReader(os.Stdin)
		if email == "" {
			fmt.Fprint(os.Stderr, "Email: ")
			line, err := readLine(in)
			if err != nil {
				return err
			}
			email = line
		}

		var password string
		var err error
		if passwordStdin || !ui.IsTerminal(os.Stdin) {
			password, err = readLine(in)
		} else {
			fmt.Fprint(os.Stderr, "Password: ")
			password, err = ui.ReadPassword(os.Stdin)
			fmt.Fprintln(os.Stderr)
		}
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		sess, err := apiClient.Login(context.Background(), &client.LoginRequest{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("login failed: %s", client.UserMessage(err, err.Error()))
		}

		if jsonOutput {
			return printJSON(sess)
		}
		fmt.Printf("Signed in as %s (%s)\n", displayName(sess), sess.Role)
		if sess.Flags.Frozen {
			fmt.Println(ui.RenderWarn("Your account is frozen. You can browse records but not change them."))
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:         "logout",
	Short:       "Sign out and forget the stored session",
	GroupID:     "auth",
	Args:        cobra.NoArgs,
	Annotations: screenOf(screenSignedIn),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := displayName(sessions.Get())
		if err := apiClient.Logout(context.Background()); err != nil {
			// The local session is already gone; only the server call failed.
			logger.Warn("server logout failed", "error", err)
		}
		fmt.Printf("Signed out %s\n", name)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the signed-in account",
	GroupID:     "auth",
	Args:        cobra.NoArgs,
	Annotations: screenOf(screenSignedIn),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := sessions.Get()
		if jsonOutput {
			return printJSON(sess)
		}
		fmt.Printf("Name:      %s\n", displayName(sess))
		fmt.Printf("Identity:  %s\n", sess.Identity)
		fmt.Printf("Role:      %s\n", sess.Role)
		if !sess.AuthenticatedAt.IsZero() {
			fmt.Printf("Signed in: %s\n", sess.AuthenticatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		if sess.Flags.Frozen {
			fmt.Printf("Status:    %s\n", ui.RenderWarn("frozen"))
		}
		return nil
	},
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().String("email", "", "account email (prompted if omitted)")
	loginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
}
