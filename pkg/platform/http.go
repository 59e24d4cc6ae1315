package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// publishRequest is the wire form both publishers send.
type publishRequest struct {
	Message   string   `json:"message"`
	Kind      string   `json:"kind"`
	MediaURLs []string `json:"media_urls,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Mentions  []string `json:"mentions,omitempty"`
	Links     []string `json:"links,omitempty"`
}

// publishResponse is the wire form both platforms answer with.
type publishResponse struct {
	Id    string `json:"id"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// postJSON sends an authorized JSON POST and decodes the platform response.
func postJSON(ctx context.Context, client *http.Client, url, token string, body any) (*publishResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var out publishResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		msg := out.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return nil, fmt.Errorf("platform returned %d: %s", resp.StatusCode, msg)
	}
	if out.Id == "" {
		return nil, fmt.Errorf("platform accepted the publication but returned no id")
	}
	return &out, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
