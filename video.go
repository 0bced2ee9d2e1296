package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type QualityPreset int

const (
	// PresetFast favors encode speed over size and fidelity.
	PresetFast QualityPreset = iota
	// PresetQuality favors fidelity at a slower encode.
	PresetQuality
)

// ffmpegEncoder streams PNG frames to an ffmpeg process over stdin
// (image2pipe) and lets it mux the container file. Frames must arrive in
// strict index order. Encode progress is read back from ffmpeg's stderr
// frame counters.
type ffmpegEncoder struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	outputPath string
	next       int
	onProgress func(framesEncoded int)
	stderrDone chan struct{}
}

// newFFmpegEncoder starts the ffmpeg worker. onProgress, when non-nil,
// receives the running encoded-frame count parsed from ffmpeg's status
// lines.
func newFFmpegEncoder(outputPath string, fps float64, preset QualityPreset, onProgress func(int)) (*ffmpegEncoder, error) {
	args := []string{
		"-y",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-r", fmt.Sprintf("%g", fps),
		"-i", "-",
		"-c:v", "libx264",
		// libx264 requires even dimensions; pad rather than crop.
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprintf("%g", fps),
	}
	switch preset {
	case PresetQuality:
		args = append(args, "-preset", "slow", "-crf", "18")
	default:
		args = append(args, "-preset", "ultrafast", "-crf", "28")
	}
	args = append(args, outputPath)

	cmd := exec.Command("ffmpeg", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stdin: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	enc := &ffmpegEncoder{
		cmd:        cmd,
		stdin:      stdin,
		outputPath: outputPath,
		onProgress: onProgress,
		stderrDone: make(chan struct{}),
	}
	go enc.watchProgress(stderr)
	return enc, nil
}

func (e *ffmpegEncoder) WriteFrame(index int, data []byte) error {
	if index != e.next {
		return fmt.Errorf("frame %d written out of order, want %d", index, e.next)
	}
	if _, err := e.stdin.Write(data); err != nil {
		return fmt.Errorf("ffmpeg rejected frame %d: %w", index, err)
	}
	e.next++
	return nil
}

func (e *ffmpegEncoder) Finalize() error {
	e.stdin.Close()
	<-e.stderrDone
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg exited with error: %w", err)
	}
	return nil
}

// Abort stops the encoder and removes the partially written container.
func (e *ffmpegEncoder) Abort() {
	e.stdin.Close()
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	<-e.stderrDone
	e.cmd.Wait()
	os.Remove(e.outputPath)
}

// watchProgress scans ffmpeg status lines ("frame=  42 fps=...") and
// forwards the counter.
func (e *ffmpegEncoder) watchProgress(stderr io.Reader) {
	defer close(e.stderrDone)
	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanLinesAndCR)
	for scanner.Scan() {
		if n, ok := parseFrameCounter(scanner.Text()); ok && e.onProgress != nil {
			e.onProgress(n)
		}
	}
}

// parseFrameCounter extracts N from ffmpeg's "frame=   N" status prefix.
func parseFrameCounter(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "frame=") {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "frame="))
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return 0, false
	}
	if end == -1 {
		end = len(rest)
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// scanLinesAndCR splits on \n and \r, since ffmpeg redraws its status line
// with bare carriage returns.
func scanLinesAndCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
