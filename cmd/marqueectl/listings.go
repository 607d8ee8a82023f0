package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var screensCmd = &cobra.Command{
	Use:   "screens",
	Short: "List the screens on the account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, _, err := newClient()
		if err != nil {
			return err
		}
		screens, err := client.ListScreens(context.Background(), token)
		if err != nil {
			return err
		}
		return printJSON(screens)
	},
}

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List the playlists on the account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, _, err := newClient()
		if err != nil {
			return err
		}
		playlists, err := client.ListPlaylists(context.Background(), token)
		if err != nil {
			return err
		}
		return printJSON(playlists)
	},
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List the usable assets on the account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, _, err := newClient()
		if err != nil {
			return err
		}
		assets, err := client.ListAssets(context.Background(), token)
		if err != nil {
			return err
		}
		return printJSON(assets)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the configured API key is accepted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, _, err := newClient()
		if err != nil {
			return err
		}
		if err := client.VerifyToken(context.Background(), token); err != nil {
			return err
		}
		fmt.Println("Credentials verified")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(screensCmd)
	rootCmd.AddCommand(playlistsCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(verifyCmd)
}
