package ocr

import (
	"bytes"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/dreheist/drebot/internal/game"
	"github.com/go-resty/resty/v2"
)

// Client talks to the local text recognizer sidecar. It implements
// game.Sensor: capture the game window, crop the requested region and post it
// for recognition.
type Client struct {
	http   *resty.Client
	window func() uintptr
	logger *slog.Logger
}

type recognizeResponse struct {
	Text string `json:"text"`
}

// NewClient builds a sensor bound to a recognizer endpoint. window resolves
// the current game window handle on every capture, so the sensor survives
// game restarts without rewiring.
func NewClient(logger *slog.Logger, endpoint string, window func() uintptr) *Client {
	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		http:   httpClient,
		window: window,
		logger: logger,
	}
}

func (c *Client) Capture(left, top, width, height float64, includeFrame bool) (string, error) {
	hwnd := c.window()
	if hwnd == 0 {
		return "", game.ErrNoTarget
	}

	frame := captureWindow(hwnd)
	if frame == nil {
		return "", game.ErrNoTarget
	}

	region := frame
	if !includeFrame {
		region = cropRelative(frame, left, top, width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, region); err != nil {
		return "", fmt.Errorf("error encoding capture: %w", err)
	}

	var result recognizeResponse
	resp, err := c.http.R().
		SetHeader("Content-Type", "image/png").
		SetBody(buf.Bytes()).
		SetResult(&result).
		Post("/recognize")
	if err != nil {
		return "", fmt.Errorf("recognizer request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("recognizer returned %d", resp.StatusCode())
	}

	c.logger.Debug("recognized region text",
		slog.String("text", result.Text),
		slog.Int("bytes", buf.Len()))

	return result.Text, nil
}
