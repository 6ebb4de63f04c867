package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "blog-api",
		Short: "Social blogging REST backend",
		Long: `blog-api serves users, posts, comments, likes and follows over a JSON API.

Every flag can also be set through the environment: upper-case the flag name
and replace dashes with underscores (--jwt-secret becomes JWT_SECRET). A .env
file in the working directory is loaded first when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of blog-api",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blog-api %s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("env", "development", "Deployment environment; production refuses the default JWT secret")
	flags.String("database-driver", "postgres", "Relational database: postgres or sqlite")
	flags.String("postgres-conn-str", "", "PostgreSQL connection string")
	flags.String("sqlite-path", "blog.db", "SQLite database file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text or json)")

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

// initConfig loads .env files before viper reads the environment.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}
