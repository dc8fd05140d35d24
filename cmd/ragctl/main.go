// Package main implements the ragctl CLI for manual operations against the
// ragd HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the ragd HTTP server
	serverURL string
	// adminSecret authenticates admin commands
	adminSecret string
	// username/password authenticate tenant commands
	username string
	password string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "CLI for ragd HTTP server operations",
	Long: `ragctl is a command-line interface for interacting with the ragd HTTP server.
It provides admin commands for user lifecycle and tenant commands for
uploading documents and asking questions.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "ragd server URL")

	userCmd.PersistentFlags().StringVar(&adminSecret, "secret", "", "admin shared secret")
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userListCmd)

	for _, cmd := range []*cobra.Command{uploadCmd, askCmd, docsCmd} {
		cmd.PersistentFlags().StringVar(&username, "user", "", "tenant username")
		cmd.PersistentFlags().StringVar(&password, "password", "", "tenant password")
		rootCmd.AddCommand(cmd)
	}
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)

	rootCmd.AddCommand(healthCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Administrative user lifecycle operations",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username> <password>",
	Short: "Create a user and its workspace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserCreate(args[0], args[1])
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user and all its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserDelete(args[0])
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserList()
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload and ingest a document",
	Long: `Upload a document into the authenticated tenant's workspace and ingest
it into the tenant's vector collection.

Examples:
  ragctl upload report.pdf --user alice --password pw1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpload(args[0])
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question grounded in your uploaded documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(args[0])
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDocsList()
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <filename>",
	Short: "Delete an uploaded document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDocsDelete(args[0])
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check ragd server health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealth()
	},
}

// requireTenantFlags validates flags shared by tenant commands.
func requireTenantFlags() error {
	if username == "" || password == "" {
		return fmt.Errorf("--user and --password are required")
	}
	return nil
}

// requireAdminFlags validates flags shared by admin commands.
func requireAdminFlags() error {
	if adminSecret == "" {
		return fmt.Errorf("--secret is required")
	}
	return nil
}
