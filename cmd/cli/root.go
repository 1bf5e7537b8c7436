package main

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/DaihanaA/avanzatech-blog/auth"
	"github.com/DaihanaA/avanzatech-blog/bolt"
	"github.com/DaihanaA/avanzatech-blog/clients"
	"github.com/DaihanaA/avanzatech-blog/clients/identity"
	"github.com/DaihanaA/avanzatech-blog/clients/post"
	"github.com/DaihanaA/avanzatech-blog/errors"
	"github.com/DaihanaA/avanzatech-blog/jwt"
	"github.com/DaihanaA/avanzatech-blog/log"
)

type Configuration struct {
	API struct {
		URL string `toml:"url"`
	} `toml:"api"`
	Session struct {
		Store string `toml:"store"`
	} `toml:"session"`
}

var (
	// flags
	env        string
	configFile string

	// logger
	logger log.Logger

	// configuration
	config Configuration

	// session
	sessionStore *bolt.SessionStore
	state        *auth.State

	// clients
	posts *post.Client
)

func init() {
	RootCmd.PersistentFlags().StringVar(&env, "env", "dev", "environment")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file")
}

var RootCmd = cobra.Command{
	Use:   "avanzablog",
	Short: "Read and write posts on the avanzatech blog",
	Long:  "Read and write posts on the avanzatech blog",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = log.New(env)

		if configFile == "" {
			configFile = path.Join("configuration", fmt.Sprintf("config.%s.toml", env))
		}

		// Defaults keep the CLI usable without a configuration file.
		config.API.URL = "http://localhost:8081"
		config.Session.Store = path.Join(homeDir(), ".avanzablog", "session.db")

		if data, err := os.ReadFile(configFile); err == nil {
			if err := toml.Unmarshal(data, &config); err != nil {
				logger.Fatal("error unmarshalling configuration:", err)
			}
		} else if cmd.Flags().Changed("config") {
			logger.Fatal("could not read configuration file:", err)
		}

		if err := os.MkdirAll(path.Dir(config.Session.Store), 0700); err != nil {
			logger.Fatal("could not create session directory:", err)
		}

		var err error
		sessionStore, err = bolt.Open(config.Session.Store)
		if err != nil {
			logger.Fatal("could not open session store:", err)
		}

		identityClient := identity.NewClient(http.DefaultClient, config.API.URL)
		state = auth.NewState(sessionStore, identityClient, logger)
		state.OnLogout = func() {
			fmt.Println("Signed out. Run 'avanzablog posts list' to browse public posts.")
		}

		bearer := clients.NewClient(http.DefaultClient, state)
		posts = post.NewClient(bearer, config.API.URL)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		sessionStore.Close()
	},
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// ensureFreshToken refreshes the access token when the stored one already
// expired, so the next call does not waste a round-trip on a 401. An expired
// refresh token surfaces as a session error and ends the session.
func ensureFreshToken(cmd *cobra.Command) {
	if !state.IsLoggedIn() {
		return
	}
	if !jwt.Expired(state.Token(), time.Now()) {
		return
	}

	if _, err := state.RefreshToken(cmd.Context()); err != nil {
		if errors.IsSession(err) {
			logger.Print("session expired, sign in again")
			state.Logout()
			return
		}
		logger.Error("could not refresh token:", err)
	}
}

func inheritPersistentPreRun(cmd *cobra.Command) {
	ppr := cmd.PersistentPreRun
	cmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		if cmd.Parent() != nil && cmd.Parent().PersistentPreRun != nil {
			cmd.Parent().PersistentPreRun(c, args)
		}

		if ppr != nil {
			ppr(c, args)
		}
	}
}
