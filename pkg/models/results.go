package models

// WorkflowResult is returned by the complete-workflow operation.
type WorkflowResult struct {
	Asset      Asset  `json:"asset"`
	PlaylistID string `json:"playlist_id"`
	ScreenID   string `json:"screen_id"`
}

// AssignmentResult is returned after associating a playlist with a screen.
type AssignmentResult struct {
	ScreenID   string `json:"screen_id"`
	PlaylistID string `json:"playlist_id"`
	Message    string `json:"message"`
}

// CleanupResult tallies the best-effort sweep of bridge-created content.
// Individual deletions that fail are excluded from the counts, never raised.
type CleanupResult struct {
	PlaylistsRemoved int    `json:"playlists_removed"`
	AssetsRemoved    int    `json:"assets_removed"`
	Message          string `json:"message"`
}
