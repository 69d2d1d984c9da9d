package ui

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/migration"
)

// PlainProgress is the fallback when the live display is off: a single
// playlist-level progress bar on top of the regular log output.
type PlainProgress struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewPlainProgress builds the plain-mode reporter. The bar is only drawn for
// single-worker runs at info level or quieter; concurrent workers interleave
// their log lines and a redrawing bar would shred them.
func NewPlainProgress(totalPlaylists, migrationWorkers int) *PlainProgress {
	p := &PlainProgress{}

	if totalPlaylists > 0 && migrationWorkers == 1 && logger.Level() <= zap.InfoLevel {
		p.bar = progressbar.Default(int64(totalPlaylists), "Migrating")
	}

	return p
}

// Sink returns the event sink feeding the bar. Everything else is already
// logged by the pipeline itself.
func (p *PlainProgress) Sink() migration.EventSink {
	return func(event any) {
		p.apply(event)
	}
}

func (p *PlainProgress) apply(event any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}

	switch event := event.(type) {
	case migration.PlaylistStartedEvent:
		p.bar.Describe(fmt.Sprintf("Migrating '%s'", Sanitize(event.Name)))
	case migration.PlaylistFinishedEvent:
		_ = p.bar.Add(1)
	}
}

// Finish completes the bar when one was drawn.
func (p *PlainProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
