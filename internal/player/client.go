package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

// ErrDisplayUnknown is returned when the server has no such display (or no
// main display when none was given).
var ErrDisplayUnknown = errors.New("display not found")

// Client talks to the public /api/tv endpoints.
type Client struct {
	base string
	http *http.Client
}

func NewClient(apiBase string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimSuffix(apiBase, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (int, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return resp.StatusCode, nil
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, ErrDisplayUnknown
	case resp.StatusCode >= 300:
		var body errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
		return resp.StatusCode, fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, body.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%s: bad JSON: %w", path, err)
	}
	return resp.StatusCode, nil
}

// Playlist fetches the current and next slot. A nil displayID asks for the
// main display. A 204 is treated like an empty playlist.
func (c *Client) Playlist(ctx context.Context, displayID *uuid.UUID) (model.Playlist, error) {
	query := url.Values{}
	if displayID != nil {
		query.Set("displayId", displayID.String())
	}
	var p model.Playlist
	if _, err := c.getJSON(ctx, "/api/tv/playlist", query, &p); err != nil {
		return model.Playlist{}, err
	}
	return p, nil
}

// Activate exchanges an activation code for the display's id.
func (c *Client) Activate(ctx context.Context, code string) (uuid.UUID, error) {
	var body struct {
		DisplayID uuid.UUID `json:"display_id"`
	}
	if _, err := c.getJSON(ctx, "/api/tv/activate", url.Values{"code": {code}}, &body); err != nil {
		return uuid.Nil, err
	}
	return body.DisplayID, nil
}

// Download streams url into w.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}
