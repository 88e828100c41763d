package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// CommandRunner executes an external command with stdin and returns stdout bytes.
type CommandRunner func(ctx context.Context, stdin io.Reader, binary string, args ...string) ([]byte, error)

// FFProbe reads media durations with the ffprobe CLI.
type FFProbe struct {
	Binary  string
	Args    []string
	Run     CommandRunner
	Timeout time.Duration
}

// NewFFProbe constructs a prober that shells out to ffprobe, streaming the
// media through stdin.
func NewFFProbe(binary string, timeout time.Duration) *FFProbe {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbe{
		Binary:  binary,
		Args:    []string{"-v", "error", "-show_entries", "format=duration", "-of", "json", "-i", "pipe:0"},
		Run:     defaultCommandRunner,
		Timeout: timeout,
	}
}

// Duration returns the media length rounded to whole seconds.
func (p *FFProbe) Duration(ctx context.Context, r io.Reader) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("ffprobe: prober not configured")
	}
	run := p.Run
	if run == nil {
		run = defaultCommandRunner
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	out, err := run(execCtx, r, p.Binary, p.Args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if payload.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}

	seconds, err := strconv.ParseFloat(payload.Format.Duration, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) {
		return 0, fmt.Errorf("ffprobe duration %q is invalid", payload.Format.Duration)
	}
	return int64(math.Round(seconds)), nil
}

func defaultCommandRunner(ctx context.Context, stdin io.Reader, binary string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = stdin
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}
