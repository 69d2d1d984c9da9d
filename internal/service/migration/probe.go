package migration

//go:generate $MOCKGEN -source=probe.go -destination=mocks/probe_mock.go

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/service/download"
)

// probeTimeout bounds one probe invocation. Probing reads only headers,
// so anything slower than this is stuck.
const probeTimeout = 30 * time.Second

// AudioAttributes carries the technical metadata extracted from a media file.
type AudioAttributes struct {
	// FileSizeBytes is the file size reported by the container.
	FileSizeBytes int64
	// Format is the container format's first name token.
	Format string
	// CodecName is the audio codec's short name.
	CodecName string
	// CodecLongName is the audio codec's descriptive name.
	CodecLongName string
	// SampleRate is the sample rate in Hz.
	SampleRate int
	// Channels is the channel count.
	Channels int
	// ChannelLayout names the channel layout.
	ChannelLayout string
	// BitDepth is the bits per sample for lossless codecs, 0 when unknown.
	BitDepth int
	// BitrateAvg is the container's average bitrate in bits per second.
	BitrateAvg int64
	// BitrateMax is the stream's maximum bitrate, falling back to the average.
	BitrateMax int64
	// DurationSeconds is the duration in seconds.
	DurationSeconds float64
}

// Prober extracts technical audio metadata from downloaded files.
type Prober interface {
	// Probe inspects one file. It returns ErrNoAudioStream for files the
	// probe tool can read but that carry no audio.
	Probe(ctx context.Context, path string) (*AudioAttributes, error)
}

// FFProber implements Prober by shelling out to an ffprobe-compatible binary.
type FFProber struct {
	// binary is the probe executable name or path.
	binary string
	// runner executes the subprocess.
	runner download.Runner
}

// NewFFProber creates and returns a new instance of FFProber.
func NewFFProber(cfg *config.Config, runner download.Runner) Prober {
	return &FFProber{
		binary: cfg.ProbeBinary,
		runner: runner,
	}
}

// Probe inspects one file.
func (p *FFProber) Probe(ctx context.Context, path string) (*AudioAttributes, error) {
	if p.binary == "" {
		return nil, ErrEmptyProbeBinary
	}

	execResult := p.runner.Run(ctx, download.ExecSpec{
		Bin:     p.binary,
		Args:    []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path},
		Timeout: probeTimeout,
	})
	if execResult.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProbeFailed, execResult.Err)
	}

	if execResult.ExitCode != 0 {
		return nil, fmt.Errorf("%w: exit code %d", ErrProbeFailed, execResult.ExitCode)
	}

	var payload probePayload
	if err := json.Unmarshal([]byte(execResult.StdoutTail), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}

	stream := payload.audioStream()
	if stream == nil {
		return nil, ErrNoAudioStream
	}

	return payload.attributes(stream), nil
}

// probePayload mirrors the probe tool's JSON output. Numeric values arrive
// as strings in most fields; channels and bits_per_sample are the exceptions.
type probePayload struct {
	Streams []*probeStream `json:"streams"`
	Format  *probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType        string `json:"codec_type"`
	CodecName        string `json:"codec_name"`
	CodecLongName    string `json:"codec_long_name"`
	SampleRate       string `json:"sample_rate"`
	Channels         int    `json:"channels"`
	ChannelLayout    string `json:"channel_layout"`
	BitsPerRawSample string `json:"bits_per_raw_sample"`
	BitsPerSample    int    `json:"bits_per_sample"`
	MaxBitRate       string `json:"max_bit_rate"`
}

type probeFormat struct {
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
	BitRate    string `json:"bit_rate"`
	Duration   string `json:"duration"`
}

// audioStream returns the first audio stream, or nil.
func (p *probePayload) audioStream() *probeStream {
	for _, stream := range p.Streams {
		if stream != nil && stream.CodecType == "audio" {
			return stream
		}
	}

	return nil
}

func (p *probePayload) attributes(stream *probeStream) *AudioAttributes {
	attributes := &AudioAttributes{
		CodecName:     stream.CodecName,
		CodecLongName: stream.CodecLongName,
		SampleRate:    int(parseProbeInt(stream.SampleRate)),
		Channels:      stream.Channels,
		ChannelLayout: stream.ChannelLayout,
	}

	attributes.BitDepth = int(parseProbeInt(stream.BitsPerRawSample))
	if attributes.BitDepth == 0 {
		attributes.BitDepth = stream.BitsPerSample
	}

	if p.Format != nil {
		attributes.FileSizeBytes = parseProbeInt(p.Format.Size)
		attributes.BitrateAvg = parseProbeInt(p.Format.BitRate)
		attributes.DurationSeconds = parseProbeFloat(p.Format.Duration)

		// Container formats list aliases comma-separated; the first is canonical.
		attributes.Format, _, _ = strings.Cut(p.Format.FormatName, ",")
	}

	attributes.BitrateMax = parseProbeInt(stream.MaxBitRate)
	if attributes.BitrateMax == 0 {
		attributes.BitrateMax = attributes.BitrateAvg
	}

	return attributes
}

func parseProbeInt(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}

	return parsed
}

func parseProbeFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}

	return parsed
}
