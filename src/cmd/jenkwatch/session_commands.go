package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/logger"
)

var (
	loginURL       string
	loginUsername  string
	loginToken     string
	loginAnonymous bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Validate Jenkins credentials and store them in the OS keyring",
	Long: `Validates the credentials with one live fetch against the configured job
and stores them in the OS keyring on success. Nothing is kept when the
server rejects them.

Flags fall back to the JENKINS_URL, JENKINS_USERNAME and JENKINS_API_TOKEN
environment variables (a .env file is honored).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewConsoleLogger()

		url := loginURL
		if url == "" {
			url = appConfig.ServerURL
		}
		if url == "" {
			return fmt.Errorf("server URL is required (--url or JENKINS_URL)")
		}

		var credentials ci.Credentials
		var err error
		if loginAnonymous {
			credentials, err = ci.Anonymous(url)
		} else {
			username := loginUsername
			if username == "" {
				username = appConfig.Username
			}
			token := loginToken
			if token == "" {
				token = appConfig.APIToken
			}
			if username == "" || token == "" {
				return fmt.Errorf("username and API token are required (or use --anonymous)")
			}
			credentials, err = ci.BasicAuth(url, username, token)
		}
		if err != nil {
			return err
		}

		settings := newSettingsStore(log).Load()
		manager := newSessionManager(settings.JobPath, log)

		builds, err := manager.Authenticate(cmd.Context(), credentials)
		if err != nil {
			return fmt.Errorf("login failed: %s", ci.UserMessage(err))
		}
		fmt.Printf("Logged in to %s. Job %s has %d completed builds.\n",
			credentials.BaseURL, settings.JobPath, len(builds))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the stored Jenkins credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := newSessionManager("", logger.NewConsoleLogger())
		if err := manager.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var (
	jobsRoot string
	jobsSet  string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Discover job paths on the Jenkins server",
	Long: `Walks the server's folder tree and prints the leaf job paths, sorted.
Use --set to write one of them into the settings as the monitored job.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewConsoleLogger()
		settingsStore := newSettingsStore(log)
		settings := settingsStore.Load()

		if jobsSet != "" {
			settings.JobPath = jobsSet
			if !settings.Valid() {
				return fmt.Errorf("invalid job path %q", jobsSet)
			}
			if err := settingsStore.Save(settings); err != nil {
				return err
			}
			fmt.Printf("Now monitoring %s\n", jobsSet)
			return nil
		}

		manager := newSessionManager(settings.JobPath, log)
		restored, err := manager.Restore()
		if err != nil {
			return err
		}
		if !restored {
			return fmt.Errorf("not logged in; run `jenkwatch login` first")
		}

		paths, err := manager.Repository().FetchJobsList(cmd.Context(), jobsRoot)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %s", ci.UserMessage(err))
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginURL, "url", "", "Jenkins base URL")
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "Jenkins username")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Jenkins API token")
	loginCmd.Flags().BoolVar(&loginAnonymous, "anonymous", false, "connect without authentication")

	jobsCmd.Flags().StringVar(&jobsRoot, "root", "", "folder path to start discovery from")
	jobsCmd.Flags().StringVar(&jobsSet, "set", "", "write this job path into the settings")
}
