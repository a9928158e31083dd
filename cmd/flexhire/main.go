package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "flexhire",
	Short:         "flexhire — informal-labor job marketplace",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(applicationsCmd)
	rootCmd.AddCommand(applicantsCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	// A local .env can carry FLEXHIRE_* overrides during development.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
