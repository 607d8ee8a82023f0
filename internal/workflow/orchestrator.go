package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marquee/internal/history"
	"marquee/internal/screenly"
	"marquee/pkg/models"

	"github.com/sirupsen/logrus"
)

// ManagedTag is the label name attached to every playlist and asset this
// service creates. The literal value is kept for compatibility with content
// tagged by the hosted Zapier integration, so one cleanup sweeps both.
const ManagedTag = "created_by_zapier"

// ErrPlaylistChoiceRequired is raised before any remote call when neither an
// existing playlist nor a new playlist name was provided.
var ErrPlaylistChoiceRequired = errors.New("Either select an existing playlist or provide a name for a new one")

// ErrConfirmationRequired guards the destructive cleanup sweep.
var ErrConfirmationRequired = errors.New("Please confirm the cleanup operation")

// Orchestrator sequences the resource operations and the readiness poller
// into multi-step business transactions. There is no compensation: once a
// step fails the invocation terminates, leaving earlier-created remote
// resources in place for the cleanup operation to sweep.
type Orchestrator struct {
	client *screenly.Client
	store  *history.Store // optional run audit log, may be nil
	logger *logrus.Logger
}

// NewOrchestrator wires the workflow sequencer. store may be nil to disable
// run history.
func NewOrchestrator(client *screenly.Client, store *history.Store, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{
		client: client,
		store:  store,
		logger: logger,
	}
}

// CompleteInput is the full add-content-to-screen request.
type CompleteInput struct {
	FileURL         string
	Title           string
	Duration        int // seconds, 0 means the default of 10
	PlaylistID      string
	NewPlaylistName string
	ScreenID        string
	StartDate       string // optional RFC 3339, gates the new playlist's predicate
	EndDate         string // optional RFC 3339
}

// Complete uploads an asset, resolves or creates the target playlist, waits
// for the asset to become ready, attaches it, and assigns the playlist to
// the requested screen.
func (o *Orchestrator) Complete(ctx context.Context, token screenly.Token, in CompleteInput) (result *models.WorkflowResult, err error) {
	if in.PlaylistID == "" && in.NewPlaylistName == "" {
		return nil, ErrPlaylistChoiceRequired
	}
	if err := ValidateDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	runID := o.recordStart("complete_workflow")
	defer func() { o.recordResult(runID, result, err) }()

	asset, err := o.client.CreateAsset(ctx, token, screenly.CreateAssetParams{
		Title:     in.Title,
		SourceURL: in.FileURL,
	})
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"asset_id": asset.ID,
		"title":    asset.Title,
	}).Info("Asset created")

	playlistID := in.PlaylistID
	if playlistID == "" {
		playlistID, err = o.createManagedPlaylist(ctx, token, in)
		if err != nil {
			return nil, err
		}
	}

	if _, err = o.client.WaitForAssetReady(ctx, token, asset.ID); err != nil {
		return nil, err
	}

	duration := in.Duration
	if duration == 0 {
		duration = defaultItemDuration
	}
	if _, err = o.client.CreatePlaylistItem(ctx, token, asset.ID, playlistID, duration); err != nil {
		return nil, err
	}

	if _, err = o.client.AssignPlaylistToScreen(ctx, token, in.ScreenID, playlistID); err != nil {
		return nil, err
	}

	return &models.WorkflowResult{
		Asset:      *asset,
		PlaylistID: playlistID,
		ScreenID:   in.ScreenID,
	}, nil
}

// defaultItemDuration is applied when the caller does not specify how long
// an asset should be shown.
const defaultItemDuration = 10

// createManagedPlaylist creates a playlist gated from the requested start
// (or now), then tags it with the managed label so cleanup can find it. The
// label resolve is idempotent: an existing label is reused.
func (o *Orchestrator) createManagedPlaylist(ctx context.Context, token screenly.Token, in CompleteInput) (string, error) {
	playlist, err := o.client.CreatePlaylist(ctx, token, in.NewPlaylistName, buildPredicate(in.StartDate, in.EndDate))
	if err != nil {
		return "", err
	}

	o.logger.WithFields(logrus.Fields{
		"playlist_id": playlist.ID,
		"title":       playlist.Title,
	}).Info("Playlist created")

	label, err := o.client.FindOrCreateLabel(ctx, token, ManagedTag)
	if err != nil {
		return "", err
	}

	// The label/playlist join doubles as the tagging mechanism: assigning
	// the managed label to the playlist marks it as ours.
	if _, err := o.client.AssignPlaylistToScreen(ctx, token, label.ID, playlist.ID); err != nil {
		return "", err
	}

	return playlist.ID, nil
}

// buildPredicate renders the playback eligibility expression for a new
// playlist. With no explicit window the playlist is eligible from now on.
func buildPredicate(startDate, endDate string) string {
	start := time.Now()
	if t, err := ParseDate("start date", startDate); err == nil && !t.IsZero() {
		start = t
	}

	predicate := fmt.Sprintf("TRUE AND ($DATE >= %d)", start.UnixMilli())
	if t, err := ParseDate("end date", endDate); err == nil && !t.IsZero() {
		predicate += fmt.Sprintf(" AND ($DATE <= %d)", t.UnixMilli())
	}
	return predicate
}

// ScheduleInput attaches an existing asset to an existing playlist.
type ScheduleInput struct {
	AssetID    string
	PlaylistID string
	Duration   int // seconds, 0 defers to the remote default
}

// Schedule waits for the asset to leave pre-processing, then links it into
// the playlist.
func (o *Orchestrator) Schedule(ctx context.Context, token screenly.Token, in ScheduleInput) (item *models.PlaylistItem, err error) {
	if in.AssetID == "" {
		return nil, errors.New("asset ID is required")
	}
	if in.PlaylistID == "" {
		return nil, errors.New("playlist ID is required")
	}

	runID := o.recordStart("schedule_playlist_item")
	defer func() {
		var res *models.WorkflowResult
		if item != nil {
			res = &models.WorkflowResult{PlaylistID: item.PlaylistID, Asset: models.Asset{ID: item.AssetID}}
		}
		o.recordResult(runID, res, err)
	}()

	if _, err = o.client.WaitForAssetReady(ctx, token, in.AssetID); err != nil {
		return nil, err
	}

	return o.client.CreatePlaylistItem(ctx, token, in.AssetID, in.PlaylistID, in.Duration)
}

// UploadInput registers a single asset without scheduling it.
type UploadInput struct {
	FileURL  string
	Title    string
	Duration int // optional, patched onto the asset after creation
}

// Upload creates an asset and optionally patches its display duration.
func (o *Orchestrator) Upload(ctx context.Context, token screenly.Token, in UploadInput) (asset *models.Asset, err error) {
	if err := ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := ValidateFileURL(in.FileURL); err != nil {
		return nil, err
	}

	runID := o.recordStart("upload_asset")
	defer func() {
		var res *models.WorkflowResult
		if asset != nil {
			res = &models.WorkflowResult{Asset: *asset}
		}
		o.recordResult(runID, res, err)
	}()

	asset, err = o.client.CreateAsset(ctx, token, screenly.CreateAssetParams{
		Title:     in.Title,
		SourceURL: in.FileURL,
	})
	if err != nil {
		return nil, err
	}

	if in.Duration > 0 {
		if err = o.client.UpdateAssetDuration(ctx, token, asset.ID, in.Duration); err != nil {
			return nil, err
		}
		asset.Duration = in.Duration
	}

	return asset, nil
}

// Cleanup removes every playlist and asset carrying the managed tag. It is a
// best-effort sweep: individual deletions that fail are excluded from the
// tallies, never raised.
func (o *Orchestrator) Cleanup(ctx context.Context, token screenly.Token, confirm bool) (result *models.CleanupResult, err error) {
	if !confirm {
		return nil, ErrConfirmationRequired
	}

	runID := o.recordStart("cleanup")
	defer func() { o.recordResult(runID, nil, err) }()

	label, err := o.client.GetLabel(ctx, token, ManagedTag)
	if err != nil {
		// No managed label means nothing was ever created through here.
		if errors.Is(err, screenly.ErrNoData) {
			return &models.CleanupResult{Message: "No managed content found"}, nil
		}
		return nil, err
	}

	mappings, err := o.client.GetPlaylistsByLabel(ctx, token, label.ID)
	if err != nil {
		return nil, err
	}

	playlistsRemoved := 0
	for _, mapping := range mappings {
		ok, delErr := o.client.DeletePlaylist(ctx, token, mapping.PlaylistID)
		if delErr != nil {
			o.logger.WithError(delErr).WithField("playlist_id", mapping.PlaylistID).Warn("Playlist deletion failed")
			continue
		}
		if ok {
			playlistsRemoved++
		}
	}

	assets, err := o.client.ListAssets(ctx, token)
	if err != nil {
		return nil, err
	}

	assetsRemoved := 0
	for _, asset := range assets {
		if !hasTag(asset.Tags, ManagedTag) {
			continue
		}
		ok, delErr := o.client.DeleteAsset(ctx, token, asset.ID)
		if delErr != nil {
			o.logger.WithError(delErr).WithField("asset_id", asset.ID).Warn("Asset deletion failed")
			continue
		}
		if ok {
			assetsRemoved++
		}
	}

	return &models.CleanupResult{
		PlaylistsRemoved: playlistsRemoved,
		AssetsRemoved:    assetsRemoved,
		Message: fmt.Sprintf("Successfully removed %d playlists and %d assets",
			playlistsRemoved, assetsRemoved),
	}, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// recordStart begins a history entry; history failures are logged, never
// surfaced, so auditing can't break a workflow.
func (o *Orchestrator) recordStart(operation string) string {
	if o.store == nil {
		return ""
	}
	runID, err := o.store.RecordStart(operation)
	if err != nil {
		o.logger.WithError(err).Warn("Could not record run start")
		return ""
	}
	return runID
}

func (o *Orchestrator) recordResult(runID string, result *models.WorkflowResult, err error) {
	if o.store == nil || runID == "" {
		return
	}

	var outcome history.Outcome
	if result != nil {
		outcome = history.Outcome{
			AssetID:    result.Asset.ID,
			PlaylistID: result.PlaylistID,
			ScreenID:   result.ScreenID,
		}
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	if recErr := o.store.RecordResult(runID, outcome, errMsg); recErr != nil {
		o.logger.WithError(recErr).Warn("Could not record run result")
	}
}
