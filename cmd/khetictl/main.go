// Command khetictl talks to a SmartKheti API server from the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"smartkheti_backend/pkg/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	apiURL    string
	tokenFile string
	timeout   time.Duration
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "khetictl",
	Short:         "SmartKheti command line client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	viper.SetEnvPrefix("SMARTKHETI")
	viper.AutomaticEnv()
	viper.SetDefault("api_url", client.DefaultBaseURL)

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (or set SMARTKHETI_API_URL)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Token file (default: user config dir)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests")

	rootCmd.AddCommand(loginCmd, logoutCmd, profileCmd, listingsCmd, detectCmd, historyCmd,
		analyticsCmd, forecastCmd, reportCmd, newsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	base := apiURL
	if base == "" {
		base = viper.GetString("api_url")
	}
	path := tokenFile
	if path == "" {
		var err error
		if path, err = client.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}
	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	return client.New(base, client.WithTokenStore(client.NewFileTokenStore(path)), client.WithLogger(logger)), nil
}

// withClient runs fn with a timeout and turns API errors into user-facing messages.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := fn(ctx, c); err != nil {
		return fmt.Errorf("%s", c.HandleError(err))
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
