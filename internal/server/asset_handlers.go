package server

import (
	"net/http"

	"marquee/internal/cloudlink"
	"marquee/internal/workflow"
)

// uploadRequest is the POST /api/assets payload.
type uploadRequest struct {
	File     string `json:"file"`
	Title    string `json:"title"`
	Duration *int   `json:"duration,omitempty"`
	FileType string `json:"file_type,omitempty"`
}

// handleAssets lists assets on GET and uploads a new one on POST.
func (bs *BridgeServer) handleAssets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bs.handleListAssets(w, r)
	case http.MethodPost:
		bs.handleUploadAsset(w, r)
	default:
		bs.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}

// handleListAssets returns the account's usable assets (cached per credential).
func (bs *BridgeServer) handleListAssets(w http.ResponseWriter, r *http.Request) {
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if bs.listings != nil {
		if assets, hit := bs.listings.GetAssets(string(token)); hit {
			bs.respondJSON(w, assets)
			return
		}
	}

	assets, err := bs.client.ListAssets(r.Context(), token)
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	if bs.listings != nil {
		bs.listings.SetAssets(string(token), assets)
	}
	bs.respondJSON(w, assets)
}

// handleUploadAsset validates the input, resolves cloud-storage share links
// to direct download URLs, and registers the asset upstream.
func (bs *BridgeServer) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	var req uploadRequest
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

	fileURL := req.File
	if cloudlink.IsCloudLink(fileURL) {
		resolved, err := cloudlink.Resolve(fileURL)
		if err != nil {
			bs.respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
			return
		}
		fileURL = resolved
	}

	asset, err := bs.orchestrator.Upload(r.Context(), token, workflow.UploadInput{
		FileURL:  fileURL,
		Title:    req.Title,
		Duration: duration,
	})
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	if bs.listings != nil {
		bs.listings.InvalidateListings(string(token))
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, asset)
}
