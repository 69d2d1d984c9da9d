package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/playlift/playlift/internal/constants"
	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/migration"
)

// runLogFileName is where terminal log output goes while the display owns
// the screen.
const runLogFileName = "run.log"

// Program owns the live terminal display for one run. While it is up, the
// process-wide logger writes to a file in the run log dir instead of the
// terminal; Finish restores it.
type Program struct {
	program        *tea.Program
	logFile        *os.File
	previousLogger *zap.Logger
	runErr         chan error
}

// Start redirects logging into runLogDir, takes over the terminal, and
// begins rendering. onInterrupt is invoked when the user asks to cancel the
// run; it should cancel the run context.
func Start(ctx context.Context, migrationWorkers, downloadWorkers int, runLogDir string, onInterrupt func()) (*Program, error) {
	logFile, err := os.OpenFile(
		filepath.Join(runLogDir, runLogFileName),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		constants.DefaultFilePermissions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log file: %w", err)
	}

	previous := logger.Logger()
	logger.SetLogger(logger.NewWithOutput(nil, logFile))

	model := NewModel(migrationWorkers, downloadWorkers, onInterrupt)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	p := &Program{
		program:        program,
		logFile:        logFile,
		previousLogger: previous,
		runErr:         make(chan error, 1),
	}

	go func() {
		_, runErr := program.Run()
		p.runErr <- runErr
	}()

	return p, nil
}

// Sink adapts the program's message loop to the migration event sink.
// Sending to a finished program is a no-op, so the sink stays safe while the
// run winds down.
func (p *Program) Sink() migration.EventSink {
	return func(event any) {
		p.program.Send(event)
	}
}

// Finish stops the display, waits for the final frame, and restores terminal
// logging.
func (p *Program) Finish() error {
	p.program.Send(runFinishedMsg{})

	err := <-p.runErr

	logger.SetLogger(p.previousLogger)

	if closeErr := p.logFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}
