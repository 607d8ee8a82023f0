package server

import (
	"path/filepath"
	"time"

	"marquee/internal/config"
	"marquee/internal/screenly"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// startConfigWatcher initializes fsnotify monitoring on the config file so
// credential and log-level changes apply without a restart.
func (bs *BridgeServer) startConfigWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	bs.watcher = watcher

	// Start monitoring in a goroutine
	go bs.watchConfig()

	// Watch the directory: editors replace the file, which would drop a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(bs.configPath)); err != nil {
		return err
	}

	bs.logger.WithField("config_path", bs.configPath).Info("Config watcher started")
	return nil
}

// watchConfig selects on watcher channels and dispatches reloads.
func (bs *BridgeServer) watchConfig() {
	defer bs.watcher.Close()

	for {
		select {
		case event, ok := <-bs.watcher.Events:
			if !ok {
				return
			}
			bs.handleConfigEvent(event)

		case err, ok := <-bs.watcher.Errors:
			if !ok {
				return
			}
			bs.logger.WithError(err).Error("Config watcher error")
		}
	}
}

// handleConfigEvent reloads configuration after writes to the watched file.
func (bs *BridgeServer) handleConfigEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(bs.configPath) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	// Dispatch asynchronously; editors often emit bursts of events
	go func() {
		time.Sleep(200 * time.Millisecond) // Ensure file is fully written
		bs.reloadConfig()
	}()
}

// reloadConfig re-reads the config file, applying the subset of settings
// that can change at runtime: the fallback credential and the log level.
func (bs *BridgeServer) reloadConfig() {
	cfg, err := config.LoadConfig(bs.configPath)
	if err != nil {
		bs.logger.WithError(err).Error("Config reload failed")
		return
	}

	bs.setDefaultToken(screenly.Token(cfg.Screenly.APIKey))

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		bs.logger.SetLevel(level)
	}

	bs.logger.WithField("config_path", bs.configPath).Info("Configuration reloaded")
}

// stopConfigWatcher closes the watcher (idempotent).
func (bs *BridgeServer) stopConfigWatcher() {
	if bs.watcher != nil {
		bs.watcher.Close()
	}
}
