package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	blog "github.com/DaihanaA/avanzatech-blog"
)

var (
	registerEmail    string
	registerTeam     string
	registerPassword string
)

func init() {
	RegisterCommand.Flags().StringVar(&registerEmail, "email", "", "email address")
	RegisterCommand.Flags().StringVar(&registerTeam, "team", "", "team to join")
	RegisterCommand.Flags().StringVar(&registerPassword, "password", "", "password (prompted when omitted)")

	RootCmd.AddCommand(&LoginCommand)
	RootCmd.AddCommand(&LogoutCommand)
	RootCmd.AddCommand(&RegisterCommand)
	RootCmd.AddCommand(&WhoamiCommand)
	RootCmd.AddCommand(&RefreshCommand)
}

var LoginCommand = cobra.Command{
	Use:   "login USERNAME",
	Short: "Sign in and persist the session",
	Long:  "Sign in and persist the session",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("login wants 1 argument: the username")
		}
		username := args[0]

		password, err := readPassword("Password: ")
		if err != nil {
			logger.Fatal("could not read password:", err)
		}

		err = state.Login(cmd.Context(), blog.Credentials{Username: username, Password: password})
		if err != nil {
			logger.Fatal("login failed: ", err)
		}

		// Login returns once the identity fetch has settled, the greeting
		// can rely on it without waiting.
		if identity := state.User().Latest(); identity != nil {
			if identity.Team != "" {
				fmt.Printf("Signed in as %s (team %s)\n", identity.Username, identity.Team)
			} else {
				fmt.Printf("Signed in as %s\n", identity.Username)
			}
		} else {
			fmt.Println("Signed in")
		}
	},
}

var LogoutCommand = cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Long:  "Sign out and clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		state.Logout()
	},
}

var RegisterCommand = cobra.Command{
	Use:   "register USERNAME",
	Short: "Create a new account",
	Long:  "Create a new account",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("register wants 1 argument: the username")
		}

		password := registerPassword
		if password == "" {
			var err error
			if password, err = readPassword("Password: "); err != nil {
				logger.Fatal("could not read password:", err)
			}
		}

		err := state.Register(cmd.Context(), blog.Registration{
			Username: args[0],
			Email:    registerEmail,
			Password: password,
			Team:     registerTeam,
		})
		if err != nil {
			logger.Fatal("registration failed: ", err)
		}

		fmt.Printf("Account %s created, sign in with 'avanzablog login %s'\n", args[0], args[0])
	},
}

var WhoamiCommand = cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Long:  "Show the current session",
	Run: func(cmd *cobra.Command, args []string) {
		if !state.IsLoggedIn() {
			fmt.Println("Not signed in")
			return
		}

		identity := state.CurrentUser(cmd.Context())
		if identity == nil {
			// still authenticated, the identity lookup just failed
			fmt.Println("Signed in, identity unavailable")
			return
		}

		fmt.Println("Username:", identity.Username)
		if identity.Team != "" {
			fmt.Println("Team:    ", identity.Team)
		}
	},
}

var RefreshCommand = cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	Long:  "Exchange the refresh token for a new access token",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := state.RefreshToken(cmd.Context()); err != nil {
			logger.Fatal("could not refresh token: ", err)
		}
		fmt.Println("Token refreshed")
	},
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		data, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	// piped input, tests and scripts
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
