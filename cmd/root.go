package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the bookingbot application
var rootCmd = &cobra.Command{
	Use:   "bookingbot",
	Short: "Appointment booking backend for WhatsApp chat support",
	Long: `bookingbot is the backend for a conversational appointment booking
assistant. It books, reschedules, cancels and lists appointments on a
Google Calendar, computes free slots within business hours, and drives
the conversation through an OpenAI-compatible completion service with
function calling.

It exposes a REST API for appointments and chat, and can additionally
serve the same tool catalog over the Model Context Protocol (MCP).`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "bookingbot version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
