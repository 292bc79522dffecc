package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Probe is the parsed output of an ffprobe inspection.
type Probe struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NBFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
	Tags         Tags   `json:"tags"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
	Tags       Tags   `json:"tags"`
}

// Tags holds the metadata tags kartvid reads.
type Tags struct {
	CreationTime string `json:"creation_time"`
}

// Inspect executes ffprobe against path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Probe, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Probe{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Probe{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Probe{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return ParseProbe(output)
}

// ParseProbe decodes ffprobe JSON output.
func ParseProbe(data []byte) (Probe, error) {
	var p Probe
	if err := json.Unmarshal(data, &p); err != nil {
		return Probe{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return p, nil
}

// VideoStream returns the first video stream.
func (p Probe) VideoStream() (Stream, bool) {
	for _, s := range p.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return s, true
		}
	}
	return Stream{}, false
}

// FrameRate returns the video stream's frame rate, preferring the real
// base rate over the average. It is 0 when unknown.
func (p Probe) FrameRate() float64 {
	s, ok := p.VideoStream()
	if !ok {
		return 0
	}
	if rate := parseRate(s.RFrameRate); rate > 0 {
		return rate
	}
	return parseRate(s.AvgFrameRate)
}

// FrameCount returns the number of frames the container declares, or 0
// when the container does not record it.
func (p Probe) FrameCount() int64 {
	s, ok := p.VideoStream()
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s.NBFrames), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// CreationTime returns the recorded creation time, from the container or
// else the video stream.
func (p Probe) CreationTime() string {
	if ct := strings.TrimSpace(p.Format.Tags.CreationTime); ct != "" {
		return ct
	}
	s, _ := p.VideoStream()
	return strings.TrimSpace(s.Tags.CreationTime)
}

// parseRate parses "30000/1001" or "29.97". It returns 0 for anything
// unusable.
func parseRate(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d := 1.0
	if found {
		d, err = strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0
		}
	}
	rate := n / d
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0
	}
	return rate
}

// frameTime returns the timestamp of 1-based frame index at rate frames per
// second.
func frameTime(index int, rate float64) int64 {
	if rate <= 0 || index <= 1 {
		return 0
	}
	return int64(math.Round(float64(index-1) * 1000 / rate))
}
