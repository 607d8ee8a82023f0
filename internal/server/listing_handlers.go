package server

import (
	"net/http"
)

// handleListScreens returns the account's screens (cached per credential).
func (bs *BridgeServer) handleListScreens(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodGet) {
		return
	}
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if bs.listings != nil {
		if screens, hit := bs.listings.GetScreens(string(token)); hit {
			bs.respondJSON(w, screens)
			return
		}
	}

	screens, err := bs.client.ListScreens(r.Context(), token)
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	if bs.listings != nil {
		bs.listings.SetScreens(string(token), screens)
	}
	bs.respondJSON(w, screens)
}

// handleListPlaylists returns the account's playlists (cached per credential).
func (bs *BridgeServer) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodGet) {
		return
	}
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if bs.listings != nil {
		if playlists, hit := bs.listings.GetPlaylists(string(token)); hit {
			bs.respondJSON(w, playlists)
			return
		}
	}

	playlists, err := bs.client.ListPlaylists(r.Context(), token)
	if err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	if bs.listings != nil {
		bs.listings.SetPlaylists(string(token), playlists)
	}
	bs.respondJSON(w, playlists)
}

// handleVerifyToken checks the caller's credential against the upstream API.
func (bs *BridgeServer) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	if !bs.requireMethod(w, r, http.MethodGet) {
		return
	}
	token, ok := bs.requireToken(w, r)
	if !ok {
		return
	}

	if err := bs.client.VerifyToken(r.Context(), token); err != nil {
		bs.respondUpstreamError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	bs.respondJSON(w, map[string]interface{}{
		"valid":   true,
		"message": "Credentials verified",
	})
}
