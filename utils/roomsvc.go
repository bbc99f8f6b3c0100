package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// RoomError is a non-tolerated failure from the room provisioning API.
type RoomError struct {
	HTTPCode int
	Message  string
}

func (e *RoomError) Error() string {
	return fmt.Sprintf("room service error [%d]: %s", e.HTTPCode, e.Message)
}

// RoomClient provisions video-session rooms on the external room service.
// Duplicate creates are not errors: the service is called again for the same
// task whenever an accept retries.
type RoomClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewRoomClient builds a client from ROOM_API_URL / ROOM_API_KEY. The
// transport timeout is a backstop; callers bound each create with a context
// deadline.
func NewRoomClient() *RoomClient {
	base := os.Getenv("ROOM_API_URL")
	if base == "" {
		base = "https://rooms.edufoyer.com"
	}
	return &RoomClient{
		BaseURL: strings.TrimRight(base, "/"),
		APIKey:  os.Getenv("ROOM_API_KEY"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type roomCreateRequest struct {
	Name       string         `json:"name"`
	Properties roomProperties `json:"properties"`
}

type roomProperties struct {
	MaxParticipants    int `json:"max_participants"`
	IdleTimeoutMinutes int `json:"idle_timeout_minutes"`
}

type roomCreateResponse struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// CreateRoom creates a room with a participant cap and an idle-timeout hint
// derived from the task category's advisory duration. Returns created=false
// with a nil error when the room already exists.
func (c *RoomClient) CreateRoom(ctx context.Context, name string, maxParticipants, durationMinutes int) (bool, error) {
	body, err := json.Marshal(roomCreateRequest{
		Name: name,
		Properties: roomProperties{
			MaxParticipants:    maxParticipants,
			IdleTimeoutMinutes: durationMinutes,
		},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/rooms", bytes.NewBuffer(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return true, nil
	case resp.StatusCode == http.StatusConflict:
		return false, nil
	case resp.StatusCode == http.StatusBadRequest:
		var parsed roomCreateResponse
		_ = json.Unmarshal(raw, &parsed)
		if strings.Contains(strings.ToLower(parsed.Error), "already exists") {
			return false, nil
		}
	}
	return false, &RoomError{HTTPCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}
