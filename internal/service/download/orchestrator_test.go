package download

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playlift/playlift/internal/config"
)

// stubRunner is a scripted Runner that records every invocation.
type stubRunner struct {
	mu    sync.Mutex
	specs []ExecSpec
	run   func(spec ExecSpec) ExecResult
}

func (r *stubRunner) Run(_ context.Context, spec ExecSpec) ExecResult {
	r.mu.Lock()
	r.specs = append(r.specs, spec)
	r.mu.Unlock()

	if r.run != nil {
		return r.run(spec)
	}

	return ExecResult{ExitCode: 0}
}

func (r *stubRunner) recorded() []ExecSpec {
	r.mu.Lock()
	defer r.mu.Unlock()

	specs := make([]ExecSpec, len(r.specs))
	copy(specs, r.specs)

	return specs
}

// newTestOrchestratorConfig builds a parallel two-worker setup by default.
func newTestOrchestratorConfig(overrides ...func(*config.Config)) *config.Config {
	cfg := &config.Config{
		DownloaderBinary:  "tiddl",
		DownloadEnabled:   true,
		ParallelDownloads: true,
		DownloadWorkers:   2,
	}

	for _, override := range overrides {
		override(cfg)
	}

	return cfg
}

func TestOrchestratorRunsDownloaderPerPlaylist(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{}
	orchestrator := NewOrchestrator(newTestOrchestratorConfig(), runner, nil, nil)

	ctx := context.Background()
	orchestrator.Add(ctx, Playlist{UUID: "uuid-1", Name: "Focus", TrackCount: 25})

	results := orchestrator.WaitForCompletion(ctx, nil)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "uuid-1", results[0].UUID)
	assert.Equal(t, "Focus", results[0].Name)
	assert.Equal(t, "Download completed", results[0].Message)

	specs := runner.recorded()
	require.Len(t, specs, 1)
	assert.Equal(t, "tiddl", specs[0].Bin)
	assert.Equal(t, []string{"download", "--skip-errors", "url", "playlist/uuid-1"}, specs[0].Args)
	assert.Equal(t, 25*perTrackTimeout, specs[0].Timeout)

	assert.Equal(t, Stats{Completed: 1}, orchestrator.Stats())
	assert.Empty(t, orchestrator.FailedDownloads())
}

func TestPlaylistTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trackCount int
		expected   time.Duration
	}{
		{
			name:       "unknown count falls back to two hours",
			trackCount: 0,
			expected:   2 * time.Hour,
		},
		{
			name:       "small playlist hits the floor",
			trackCount: 5,
			expected:   10 * time.Minute,
		},
		{
			name:       "floor boundary",
			trackCount: 20,
			expected:   10 * time.Minute,
		},
		{
			name:       "large playlist scales per track",
			trackCount: 100,
			expected:   50 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, playlistTimeout(tt.trackCount))
		})
	}
}

func TestFailureMessage(t *testing.T) {
	t.Parallel()

	longLine := "error: " + strings.Repeat("x", 300)

	tests := []struct {
		name       string
		execResult ExecResult
		expected   string
	}{
		{
			name: "error line in stderr wins",
			execResult: ExecResult{
				ExitCode:   1,
				StdoutTail: "downloading track 1\nERROR: stdout boom",
				StderrTail: "warning: slow network\nError: token expired\ntrailing noise",
			},
			expected: "Error: token expired",
		},
		{
			name: "stdout error line when stderr has none",
			execResult: ExecResult{
				ExitCode:   1,
				StdoutTail: "Fatal error: disk full",
				StderrTail: "something broke",
			},
			expected: "Fatal error: disk full",
		},
		{
			name: "stderr tail when no error lines",
			execResult: ExecResult{
				ExitCode:   1,
				StdoutTail: "progress 50%",
				StderrTail: "  broken pipe  ",
			},
			expected: "broken pipe",
		},
		{
			name: "stdout tail when stderr is empty",
			execResult: ExecResult{
				ExitCode:   1,
				StdoutTail: "halted at 3/10",
			},
			expected: "halted at 3/10",
		},
		{
			name:       "bare exit code when silent",
			execResult: ExecResult{ExitCode: 4},
			expected:   "Exit code 4",
		},
		{
			name: "long lines are truncated",
			execResult: ExecResult{
				ExitCode:   1,
				StderrTail: longLine,
			},
			expected: longLine[:failureMessageLimit],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, failureMessage(tt.execResult))
		})
	}
}

func TestOrchestratorRecordsFailures(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{
		run: func(_ ExecSpec) ExecResult {
			return ExecResult{
				ExitCode:   2,
				StderrTail: "ERROR: authentication failed",
			}
		},
	}
	orchestrator := NewOrchestrator(newTestOrchestratorConfig(), runner, nil, nil)

	ctx := context.Background()
	orchestrator.Add(ctx, Playlist{UUID: "uuid-1", Name: "Focus", TrackCount: 5})

	results := orchestrator.WaitForCompletion(ctx, nil)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "ERROR: authentication failed", results[0].Message)

	assert.Equal(t, Stats{Failed: 1}, orchestrator.Stats())

	failed := orchestrator.FailedDownloads()
	require.Len(t, failed, 1)
	assert.Equal(t, "uuid-1", failed[0].UUID)
	assert.Equal(t, "ERROR: authentication failed", failed[0].Message)
}

func TestOrchestratorTimeoutMessage(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{
		run: func(_ ExecSpec) ExecResult {
			return ExecResult{ExitCode: -1, TimedOut: true}
		},
	}
	orchestrator := NewOrchestrator(newTestOrchestratorConfig(), runner, nil, nil)

	ctx := context.Background()
	orchestrator.Add(ctx, Playlist{UUID: "uuid-1", Name: "Focus", TrackCount: 10})

	results := orchestrator.WaitForCompletion(ctx, nil)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "Download timed out after 10m0s", results[0].Message)
	assert.Equal(t, Stats{Failed: 1}, orchestrator.Stats())
}

func TestOrchestratorCallbacks(t *testing.T) {
	t.Parallel()

	var (
		callbackMutex sync.Mutex
		starts        []string
		completes     []string
	)

	onStart := func(uuid, name string, trackCount int) {
		callbackMutex.Lock()
		starts = append(starts, fmt.Sprintf("%s|%s|%d", uuid, name, trackCount))
		callbackMutex.Unlock()
	}
	onComplete := func(uuid, name string, success bool, message string) {
		callbackMutex.Lock()
		completes = append(completes, fmt.Sprintf("%s|%s|%t|%s", uuid, name, success, message))
		callbackMutex.Unlock()
	}

	// Sequential mode keeps the callback order deterministic.
	cfg := newTestOrchestratorConfig(func(cfg *config.Config) {
		cfg.ParallelDownloads = false
	})
	runner := &stubRunner{}
	orchestrator := NewOrchestrator(cfg, runner, onStart, onComplete)

	ctx := context.Background()
	orchestrator.Add(ctx, Playlist{UUID: "uuid-1", Name: "First", TrackCount: 3})
	orchestrator.Add(ctx, Playlist{UUID: "uuid-2", Name: "Second"})

	results := orchestrator.DownloadQueued(ctx)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"uuid-1|First|3", "uuid-2|Second|0"}, starts)
	assert.Equal(t, []string{
		"uuid-1|First|true|Download completed",
		"uuid-2|Second|true|Download completed",
	}, completes)
}

func TestOrchestratorSequentialMode(t *testing.T) {
	t.Parallel()

	cfg := newTestOrchestratorConfig(func(cfg *config.Config) {
		cfg.ParallelDownloads = false
	})
	runner := &stubRunner{}
	orchestrator := NewOrchestrator(cfg, runner, nil, nil)

	ctx := context.Background()
	orchestrator.Add(ctx, Playlist{UUID: "uuid-1", Name: "First", TrackCount: 3})
	orchestrator.Add(ctx, Playlist{UUID: "uuid-2", Name: "Second", TrackCount: 4})

	// Nothing runs until the queue is drained.
	assert.Empty(t, runner.recorded())
	assert.Equal(t, Stats{Pending: 2}, orchestrator.Stats())
	assert.Nil(t, orchestrator.WaitForCompletion(ctx, nil))

	results := orchestrator.DownloadQueued(ctx)
	require.Len(t, results, 2)
	assert.Equal(t, "uuid-1", results[0].UUID)
	assert.Equal(t, "uuid-2", results[1].UUID)
	assert.Len(t, runner.recorded(), 2)
	assert.Equal(t, Stats{Completed: 2}, orchestrator.Stats())

	// The queue is drained; a second pass has nothing to do.
	assert.Empty(t, orchestrator.DownloadQueued(ctx))
}

func TestOrchestratorDisabled(t *testing.T) {
	t.Parallel()

	cfg := newTestOrchestratorConfig(func(cfg *config.Config) {
		cfg.DownloadEnabled = false
	})
	runner := &stubRunner{}
	orchestrator := NewOrchestrator(cfg, runner, nil, nil)

	ctx := context.Background()
	orchestrator.Add(ctx, Playlist{UUID: "uuid-1", Name: "Focus", TrackCount: 3})

	assert.Nil(t, orchestrator.DownloadQueued(ctx))
	assert.Nil(t, orchestrator.WaitForCompletion(ctx, nil))
	assert.Empty(t, runner.recorded())
	assert.Equal(t, Stats{}, orchestrator.Stats())
}

func TestOrchestratorBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var (
		activeCount     int32
		maxConcurrent   int32
		concurrentMutex sync.Mutex
	)

	runner := &stubRunner{
		run: func(_ ExecSpec) ExecResult {
			current := atomic.AddInt32(&activeCount, 1)

			concurrentMutex.Lock()

			if current > maxConcurrent {
				maxConcurrent = current
			}

			concurrentMutex.Unlock()

			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&activeCount, -1)

			return ExecResult{ExitCode: 0}
		},
	}
	orchestrator := NewOrchestrator(newTestOrchestratorConfig(), runner, nil, nil)

	ctx := context.Background()
	for i := range 5 {
		orchestrator.Add(ctx, Playlist{
			UUID:       fmt.Sprintf("uuid-%d", i+1),
			Name:       fmt.Sprintf("Playlist %d", i+1),
			TrackCount: 1,
		})
	}

	results := orchestrator.WaitForCompletion(ctx, nil)
	assert.Len(t, results, 5)

	assert.GreaterOrEqual(t, maxConcurrent, int32(2),
		"At least 2 playlists should have been downloading concurrently")
	assert.LessOrEqual(t, maxConcurrent, int32(2),
		"No more than 2 playlists should download concurrently (DownloadWorkers=2)")
	assert.Equal(t, Stats{Completed: 5}, orchestrator.Stats())
}

func TestOrchestratorProgressCallback(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	runner := &stubRunner{
		run: func(_ ExecSpec) ExecResult {
			<-release

			return ExecResult{ExitCode: 0}
		},
	}
	orchestrator := NewOrchestrator(newTestOrchestratorConfig(), runner, nil, nil)

	ctx := context.Background()
	orchestrator.Add(ctx, Playlist{UUID: "uuid-1", Name: "Focus", TrackCount: 1})

	var progressCalls int32

	resultsCh := make(chan []Result, 1)

	go func() {
		resultsCh <- orchestrator.WaitForCompletion(ctx, func() {
			atomic.AddInt32(&progressCalls, 1)
		})
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&progressCalls) >= 1
	}, 5*time.Second, 50*time.Millisecond, "Progress callback should fire while the download is in flight")

	close(release)

	results := <-resultsCh
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}

func TestWaitForCompletionReturnsOnCanceledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	runner := &stubRunner{
		run: func(_ ExecSpec) ExecResult {
			<-release

			return ExecResult{ExitCode: 0}
		},
	}
	orchestrator := NewOrchestrator(newTestOrchestratorConfig(), runner, nil, nil)

	orchestrator.Add(context.Background(), Playlist{UUID: "uuid-1", Name: "Focus", TrackCount: 1})

	waitCtx, cancel := context.WithCancel(context.Background())
	cancel()

	results := orchestrator.WaitForCompletion(waitCtx, nil)
	assert.Empty(t, results, "A canceled wait should hand back only finished downloads")

	// Unblock the in-flight download so the pool drains.
	close(release)
	orchestrator.WaitForCompletion(context.Background(), nil)
}
