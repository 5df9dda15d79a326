package chat

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the chat backend sidecar over its local HTTP API. It also
// tracks the time of the last successful outbound send, which the health
// monitor uses as its liveness signal.
type Client struct {
	http        *resty.Client
	groupID     string
	channelName string
	logger      *slog.Logger

	mu       sync.Mutex
	lastSend time.Time
}

type sendMessageRequest struct {
	GroupID     string `json:"groupId"`
	ChannelName string `json:"channelName"`
	Message     string `json:"message"`
}

func NewClient(logger *slog.Logger, host string, port int, authToken, groupID, channelName string) *Client {
	httpClient := resty.New().
		SetBaseURL(fmt.Sprintf("http://%s:%d", host, port)).
		SetTimeout(10 * time.Second).
		SetAuthToken(authToken)

	return &Client{
		http:        httpClient,
		groupID:     groupID,
		channelName: channelName,
		logger:      logger,
		lastSend:    time.Now(),
	}
}

// Healthy probes the backend's health endpoint with a short deadline.
func (c *Client) Healthy() bool {
	resp, err := c.http.R().Get("/health")
	if err != nil {
		return false
	}
	return resp.IsSuccess()
}

// SendGroupMessage posts a message to the configured group channel. The send
// timestamp only advances on success.
func (c *Client) SendGroupMessage(message string) error {
	resp, err := c.http.R().
		SetBody(sendMessageRequest{
			GroupID:     c.groupID,
			ChannelName: c.channelName,
			Message:     message,
		}).
		Post("/send-message")
	if err != nil {
		return fmt.Errorf("send-message request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send-message returned %d", resp.StatusCode())
	}

	c.mu.Lock()
	c.lastSend = time.Now()
	c.mu.Unlock()

	c.logger.Debug("group message sent", slog.String("message", message))
	return nil
}

// LastSendTime returns when the last message went out successfully.
func (c *Client) LastSendTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSend
}

// ResetSendTimer restarts the silence accounting, used when the operator
// resumes the bot after a deliberate pause.
func (c *Client) ResetSendTimer() {
	c.mu.Lock()
	c.lastSend = time.Now()
	c.mu.Unlock()
}

// Logout asks the backend to close its chat session cleanly.
func (c *Client) Logout() error {
	resp, err := c.http.R().Post("/logout")
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("logout returned %d", resp.StatusCode())
	}
	return nil
}
