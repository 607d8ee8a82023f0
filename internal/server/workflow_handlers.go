package server

import (
	"net/http"
	"strconv"

	"marquee/internal/cloudlink"
	"marquee/internal/workflow"
)

// scheduleRequest is the POST /api/playlist-items payload.
type scheduleRequest struct {
	AssetID    string `json:"asset_id"`
	PlaylistID string `json:"playlist_id"`
	Duration   int    `json:"duration,omitempty"`
}

// handleScheduleItem waits for an asset to become ready and links it into a
// playlist.
func (bs *BridgeServer) handleScheduleItem(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodPost) {
		return
	}
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	var req scheduleRequest
	if !bs.decodeRequest(w, r, &req) {
		return
	}

	item, err := bs.orchestrator.Schedule(r.Context(), token, workflow.ScheduleInput{
		AssetID:    req.AssetID,
		PlaylistID: req.PlaylistID,
		Duration:   req.Duration,
	})
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, item)
}

// assignRequest is the POST /api/screens/assign payload.
type assignRequest struct {
	ScreenID   string `json:"screen_id"`
	PlaylistID string `json:"playlist_id"`
}

// handleAssignScreen binds a playlist to a screen. Repeat assignments are
// reported as success.
func (bs *BridgeServer) handleAssignScreen(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodPost) {
		return
	}
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if !bs.decodeRequest(w, r, &req) {
		return
	}
	if req.ScreenID == "" || req.PlaylistID == "" {
		bs.respondWithValidationError(w, r, []ValidationError{
			{Field: "screen_id", Message: "screen_id and playlist_id are required", Code: "MISSING_FIELD"},
		})
		return
	}

	result, err := bs.client.AssignPlaylistToScreen(r.Context(), token, req.ScreenID, req.PlaylistID)
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, result)
}

// completeRequest is the POST /api/workflows/complete payload.
type completeRequest struct {
	File            string `json:"file"`
	Title           string `json:"title"`
	Duration        *int   `json:"duration,omitempty"`
	FileType        string `json:"file_type,omitempty"`
	PlaylistID      string `json:"playlist_id,omitempty"`
	NewPlaylistName string `json:"new_playlist_name,omitempty"`
	ScreenID        string `json:"screen_id"`
	StartDate       string `json:"start_date,omitempty"`
	EndDate         string `json:"end_date,omitempty"`
}

// handleCompleteWorkflow runs the full upload-schedule-assign sequence.
func (bs *BridgeServer) handleCompleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodPost) {
		return
	}
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if !bs.decodeRequest(w, r, &req) {
		return
	}

	duration := 0
	if req.Duration != nil {
		duration = *req.Duration
	}
	if errs := validateUploadFields(req.Title, req.File, req.FileType, duration, req.Duration != nil); len(errs) > 0 {
		bs.respondWithValidationError(w, r, errs)
		return
	}
	if req.ScreenID == "" {
		bs.respondWithValidationError(w, r, []ValidationError{
			{Field: "screen_id", Message: "screen_id is required", Code: "MISSING_FIELD"},
		})
		return
	}

	fileURL := req.File
	if cloudlink.IsCloudLink(fileURL) {
		resolved, err := cloudlink.Resolve(fileURL)
		if err != nil {
			bs.respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
			return
		}
		fileURL = resolved
	}

	result, err := bs.orchestrator.Complete(r.Context(), token, workflow.CompleteInput{
		FileURL:         fileURL,
		Title:           req.Title,
		Duration:        duration,
		PlaylistID:      req.PlaylistID,
		NewPlaylistName: req.NewPlaylistName,
		ScreenID:        req.ScreenID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	if bs.listings != nil {
		bs.listings.InvalidateListings(string(token))
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, result)
}

// cleanupRequest is the POST /api/cleanup payload.
type cleanupRequest struct {
	Confirm bool `json:"confirm"`
}

// handleCleanup sweeps every playlist and asset this service tagged.
func (bs *BridgeServer) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodPost) {
		return
	}
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	var req cleanupRequest
	if !bs.decodeRequest(w, r, &req) {
		return
	}

	result, err := bs.orchestrator.Cleanup(r.Context(), token, req.Confirm)
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	if bs.listings != nil {
		bs.listings.InvalidateListings(string(token))
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, result)
}

// handleRecentRuns returns the most recent workflow run records.
func (bs *BridgeServer) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodGet) {
		return
	}

	if bs.store == nil {
		bs.respondWithError(w, r, http.StatusNotFound, "Run history is disabled", nil)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	runs, err := bs.store.RecentRuns(limit)
	if err != nil {
		bs.respondWithError(w, r, http.StatusInternalServerError, "Could not read run history", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, runs)
}
