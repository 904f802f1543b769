package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smartkheti_backend/pkg/client"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <phone> <password>",
	Short: "Log in and store the token pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if _, err := c.Users().Login(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the refresh token and forget the stored tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Users().Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in farmer's profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if err := requireLogin(c); err != nil {
				return err
			}
			profile, err := c.Users().Profile(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		})
	},
}

var listingsMine bool

var listingsCmd = &cobra.Command{
	Use:   "listings [search]",
	Short: "List marketplace listings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if listingsMine {
				listings, err := c.Marketplace().Mine(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), listings)
			}
			search := ""
			if len(args) == 1 {
				search = args[0]
			}
			listings, err := c.Marketplace().List(ctx, search)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), listings)
		})
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Upload a leaf photo for disease detection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			result, err := c.Detection().Detect(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show detection history, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			history, err := c.Detection().History(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), history)
		})
	},
}

var analyticsRemote bool

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Summarise crop health from detection history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if analyticsRemote {
				summary, err := c.AnalyticsSummary(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			}
			history, err := c.Detection().History(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), client.Analyze(history, time.Now(), nil))
		})
	},
}

var forecastLat, forecastLon float64

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the daily forecast for a coordinate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			forecast, err := c.Weather().Forecast(ctx, forecastLat, forecastLon)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), forecast)
		})
	},
}

var reportStart, reportEnd string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch the disease-trend report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if (reportStart == "") != (reportEnd == "") {
			return errors.New("--start and --end must be given together")
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			report, err := c.DiseaseTrend(ctx, reportStart, reportEnd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		})
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show the latest Nepal agriculture news",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			feed, err := c.News(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), feed)
		})
	},
}

func init() {
	listingsCmd.Flags().BoolVar(&listingsMine, "mine", false, "Only my listings")
	analyticsCmd.Flags().BoolVar(&analyticsRemote, "remote", false, "Use the server-side summary")
	forecastCmd.Flags().Float64Var(&forecastLat, "lat", 27.7172, "Latitude")
	forecastCmd.Flags().Float64Var(&forecastLon, "lon", 85.3240, "Longitude")
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "End date (YYYY-MM-DD)")
}

// requireLogin fails fast when the stored access token is missing or expired.
func requireLogin(c *client.Client) error {
	if !client.IsAuthenticated(c.Tokens(), time.Now()) {
		return &client.APIError{StatusCode: 401, Message: "not logged in"}
	}
	return nil
}
