package handinput

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/arvind/mudra/internal/capture"
)

// MediaPipeSource implements Source using a Python MediaPipe subprocess
// fed frames pulled from a capture.Camera. The subprocess is started
// lazily on first use and torn down after an idle period.
type MediaPipeSource struct {
	config Config
	camera capture.Camera
	logger zerolog.Logger

	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipeSource creates a new MediaPipeSource bound to the given
// camera. Returns an error if the MediaPipe service script cannot be
// located, per spec §7 ("Detector unavailable at startup: fatal to the
// experience").
func NewMediaPipeSource(cam capture.Camera, config Config) (*MediaPipeSource, error) {
	if findMediaPipeScript() == "" {
		return nil, fmt.Errorf("mediapipe_service.py not found")
	}
	return &MediaPipeSource{
		config: config,
		camera: cam,
		logger: log.Logger.With().Str("component", "handinput.mediapipe").Logger(),
	}, nil
}

// Next reads one frame from the camera, runs it through the MediaPipe
// subprocess, and returns the resulting Sample. An empty result from the
// detector yields a Sample with Present=false.
func (d *MediaPipeSource) Next() (Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return Sample{}, err
	}

	frame, err := d.camera.ReadFrame()
	if err != nil {
		return Sample{}, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return Sample{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return Sample{}, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return Sample{}, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return Sample{}, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return Sample{}, fmt.Errorf("parse response: %w", err)
	}

	d.resetIdleTimer()

	now := time.Now().UnixMilli()
	if len(response.Hands) == 0 {
		return Sample{TimestampMs: now}, nil
	}
	// The core assumes exactly zero or one hand per sample; extras from a
	// future multi-hand detector are discarded (spec §9 open question).
	return response.Hands[0].toSample(now), nil
}

// Close shuts down the Python process.
func (d *MediaPipeSource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeSource) ensureStarted() error {
	if d.started {
		return nil
	}

	scriptPath := findMediaPipeScript()
	if scriptPath == "" {
		return fmt.Errorf("mediapipe_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.logger.Info().Msg("mediapipe subprocess started")

	return nil
}

func (d *MediaPipeSource) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeSource) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(30*time.Second, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdown(); err != nil {
			d.logger.Warn().Err(err).Msg("idle shutdown of mediapipe subprocess failed")
		}
	})
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/mediapipe_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// jsonHand mirrors the MediaPipe Python service's wire format.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toSample(timestampMs int64) Sample {
	s := Sample{
		TimestampMs: timestampMs,
		Present:     true,
		Handedness:  h.Handedness,
	}
	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		s.Points[i] = Point3D{X: h.Points[i].X, Y: h.Points[i].Y, Z: h.Points[i].Z}
	}
	return s
}
