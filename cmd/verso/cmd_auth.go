package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"verso/internal/api"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in and store the session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		username := ""
		if len(args) > 0 {
			username = args[0]
		}
		if username == "" {
			username, err = promptLine("Username: ")
			if err != nil {
				return err
			}
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.session.Login(ctx, username, password); err != nil {
			return err
		}
		logger.Info("logged in", zap.String("username", username))
		fmt.Printf("Logged in as %s\n", username)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		username, err := promptLine("Username: ")
		if err != nil {
			return err
		}
		email, err := promptLine("Email: ")
		if err != nil {
			return err
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err = a.session.Register(ctx, api.RegisterRequest{
			Username: username,
			Email:    email,
			Password: password,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Welcome to Verso, %s!\n", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.session.Logout()
		a.stores.Reset()
		if a.cache != nil {
			_ = a.cache.Clear()
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.session.FetchUser(ctx); err != nil {
			return err
		}
		u := a.session.CurrentUser()
		fmt.Printf("%s <%s>\n", u.Username, u.Email)
		if u.FullName != nil && *u.FullName != "" {
			fmt.Println(*u.FullName)
		}
		return nil
	},
}

var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email [token]",
	Short: "Verify an email address and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.session.VerifyEmail(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Email verified, you are logged in")
		return nil
	},
}

var resendVerificationCmd = &cobra.Command{
	Use:   "resend-verification [email]",
	Short: "Resend the verification email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.client.ResendVerification(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Verification email sent")
		return nil
	},
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
