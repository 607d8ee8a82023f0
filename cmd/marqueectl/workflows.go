package main

import (
	"context"

	"marquee/internal/cloudlink"
	"marquee/internal/history"
	"marquee/internal/workflow"

	"github.com/spf13/cobra"
)

var (
	uploadTitle    string
	uploadFile     string
	uploadDuration int
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Register an asset from a URL.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, logger, err := newClient()
		if err != nil {
			return err
		}

		fileURL := uploadFile
		if cloudlink.IsCloudLink(fileURL) {
			if fileURL, err = cloudlink.Resolve(fileURL); err != nil {
				return err
			}
		}

		orch := workflow.NewOrchestrator(client, nil, logger)
		asset, err := orch.Upload(context.Background(), token, workflow.UploadInput{
			FileURL:  fileURL,
			Title:    uploadTitle,
			Duration: uploadDuration,
		})
		if err != nil {
			return err
		}
		return printJSON(asset)
	},
}

var (
	scheduleAsset    string
	schedulePlaylist string
	scheduleDuration int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Attach a ready asset to a playlist.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, logger, err := newClient()
		if err != nil {
			return err
		}

		orch := workflow.NewOrchestrator(client, nil, logger)
		item, err := orch.Schedule(context.Background(), token, workflow.ScheduleInput{
			AssetID:    scheduleAsset,
			PlaylistID: schedulePlaylist,
			Duration:   scheduleDuration,
		})
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var (
	assignScreen   string
	assignPlaylist string
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a playlist to a screen.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, _, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.AssignPlaylistToScreen(context.Background(), token, assignScreen, assignPlaylist)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var (
	completeFile        string
	completeTitle       string
	completeDuration    int
	completePlaylist    string
	completeNewPlaylist string
	completeScreen      string
	completeStartDate   string
	completeEndDate     string
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Upload, schedule, and assign in one step.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, logger, err := newClient()
		if err != nil {
			return err
		}

		fileURL := completeFile
		if cloudlink.IsCloudLink(fileURL) {
			if fileURL, err = cloudlink.Resolve(fileURL); err != nil {
				return err
			}
		}

		orch := workflow.NewOrchestrator(client, nil, logger)
		result, err := orch.Complete(context.Background(), token, workflow.CompleteInput{
			FileURL:         fileURL,
			Title:           completeTitle,
			Duration:        completeDuration,
			PlaylistID:      completePlaylist,
			NewPlaylistName: completeNewPlaylist,
			ScreenID:        completeScreen,
			StartDate:       completeStartDate,
			EndDate:         completeEndDate,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var cleanupConfirm bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete every playlist and asset this tool created.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, token, logger, err := newClient()
		if err != nil {
			return err
		}

		orch := workflow.NewOrchestrator(client, nil, logger)
		result, err := orch.Cleanup(context.Background(), token, cleanupConfirm)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent workflow runs from the local history store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := history.NewStore(cfg.History.Path, newLogger())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.RecentRuns(runsLimit)
		if err != nil {
			return err
		}
		return printJSON(runs)
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "asset title (required)")
	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "file URL, cloud share links are resolved (required)")
	uploadCmd.Flags().IntVar(&uploadDuration, "duration", 0, "display duration in seconds")
	uploadCmd.MarkFlagRequired("title")
	uploadCmd.MarkFlagRequired("file")

	scheduleCmd.Flags().StringVar(&scheduleAsset, "asset", "", "asset ID (required)")
	scheduleCmd.Flags().StringVar(&schedulePlaylist, "playlist", "", "playlist ID (required)")
	scheduleCmd.Flags().IntVar(&scheduleDuration, "duration", 0, "display duration in seconds")
	scheduleCmd.MarkFlagRequired("asset")
	scheduleCmd.MarkFlagRequired("playlist")

	assignCmd.Flags().StringVar(&assignScreen, "screen", "", "screen ID (required)")
	assignCmd.Flags().StringVar(&assignPlaylist, "playlist", "", "playlist ID (required)")
	assignCmd.MarkFlagRequired("screen")
	assignCmd.MarkFlagRequired("playlist")

	completeCmd.Flags().StringVar(&completeFile, "file", "", "file URL (required)")
	completeCmd.Flags().StringVar(&completeTitle, "title", "", "asset title (required)")
	completeCmd.Flags().IntVar(&completeDuration, "duration", 0, "display duration in seconds")
	completeCmd.Flags().StringVar(&completePlaylist, "playlist", "", "existing playlist ID")
	completeCmd.Flags().StringVar(&completeNewPlaylist, "new-playlist", "", "name for a new playlist")
	completeCmd.Flags().StringVar(&completeScreen, "screen", "", "screen ID (required)")
	completeCmd.Flags().StringVar(&completeStartDate, "start", "", "playback window start (RFC 3339 or YYYY-MM-DD)")
	completeCmd.Flags().StringVar(&completeEndDate, "end", "", "playback window end (RFC 3339 or YYYY-MM-DD)")
	completeCmd.MarkFlagRequired("file")
	completeCmd.MarkFlagRequired("title")
	completeCmd.MarkFlagRequired("screen")

	cleanupCmd.Flags().BoolVar(&cleanupConfirm, "confirm", false, "confirm the destructive sweep")

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(runsCmd)
}
