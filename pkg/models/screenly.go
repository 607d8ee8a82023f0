package models

// Asset represents a media item known to the Screenly service. The status
// field transitions remotely (none -> downloading -> processing -> finished)
// after an upload is accepted.
type Asset struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	SourceURL           string   `json:"source_url"`
	Status              string   `json:"status"`
	Duration            int      `json:"duration,omitempty"` // in seconds
	Type                string   `json:"type,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	DisableVerification bool     `json:"disable_verification"`
	CreatedAt           string   `json:"created_at,omitempty"`
}

// Playlist is an ordered collection of assets with an eligibility predicate
// controlling when its content may play.
type Playlist struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Predicate string `json:"predicate,omitempty"`
}

// PlaylistItem binds one asset into one playlist. Duration is optional; when
// zero the remote default applies.
type PlaylistItem struct {
	ID         string `json:"id,omitempty"`
	AssetID    string `json:"asset_id"`
	PlaylistID string `json:"playlist_id"`
	Duration   int    `json:"duration,omitempty"`
}

// Label is a remote tag resource. Screenly also uses labels as the assignment
// target when associating playlists with screens.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlaylistLabel is the join record meaning "this playlist is assigned to this
// label (screen)". Creating a duplicate mapping yields HTTP 409 remotely.
type PlaylistLabel struct {
	PlaylistID string `json:"playlist_id"`
	LabelID    string `json:"label_id,omitempty"`
}

// Screen represents a physical display registered with the service.
type Screen struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PlaylistID  string `json:"playlist_id,omitempty"`
}
