// Package client is a thin REST client for the CheckAI server, used by
// the interactive CLI.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do performs a request and returns the raw response body. Non-2xx
// responses become errors carrying the server's error message.
func (c *Client) do(method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return respBody, nil
}

func (c *Client) CreateGame() ([]byte, error) {
	return c.do(http.MethodPost, "/api/games", struct{}{})
}

func (c *Client) ListGames() ([]byte, error) {
	return c.do(http.MethodGet, "/api/games", nil)
}

func (c *Client) GetGame(gameID string) ([]byte, error) {
	return c.do(http.MethodGet, "/api/games/"+gameID, nil)
}

func (c *Client) DeleteGame(gameID string) ([]byte, error) {
	return c.do(http.MethodDelete, "/api/games/"+gameID, nil)
}

func (c *Client) SubmitMove(gameID, from, to string, promotion *string) ([]byte, error) {
	return c.do(http.MethodPost, "/api/games/"+gameID+"/move", map[string]any{
		"from":      from,
		"to":        to,
		"promotion": promotion,
	})
}

func (c *Client) SubmitAction(gameID, action, reason string) ([]byte, error) {
	body := map[string]any{"action": action}
	if reason != "" {
		body["reason"] = reason
	}
	return c.do(http.MethodPost, "/api/games/"+gameID+"/action", body)
}

func (c *Client) LegalMoves(gameID string) ([]byte, error) {
	return c.do(http.MethodGet, "/api/games/"+gameID+"/moves", nil)
}

func (c *Client) Board(gameID string) (string, error) {
	body, err := c.do(http.MethodGet, "/api/games/"+gameID+"/board", nil)
	return string(body), err
}

func (c *Client) ArchiveList() ([]byte, error) {
	return c.do(http.MethodGet, "/api/archive", nil)
}

func (c *Client) ArchiveStats() ([]byte, error) {
	return c.do(http.MethodGet, "/api/archive/stats", nil)
}

func (c *Client) ArchiveReplay(gameID string, move int) ([]byte, error) {
	path := "/api/archive/" + gameID + "/replay"
	if move >= 0 {
		path += fmt.Sprintf("?move=%d", move)
	}
	return c.do(http.MethodGet, path, nil)
}

func (c *Client) ArchiveExport(gameID, format string) (string, error) {
	body, err := c.do(http.MethodGet, "/api/archive/"+gameID+"/export?format="+format, nil)
	return string(body), err
}

// Pretty re-indents a JSON payload for terminal display.
func Pretty(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
