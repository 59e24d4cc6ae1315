package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pubdeck/pubdeck/pkg/publib"
)

// InstagramPublisher posts publications to the Instagram media endpoint.
// Instagram requires media: text-only publications are rejected before any
// network call.
type InstagramPublisher struct {
	client  *http.Client
	baseURL string
}

// NewInstagramPublisher creates a publisher against baseURL.
func NewInstagramPublisher(client *http.Client, baseURL string) *InstagramPublisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &InstagramPublisher{client: client, baseURL: baseURL}
}

// Publish sends the publication to Instagram and returns the remote media id.
func (i *InstagramPublisher) Publish(ctx context.Context, token string, p *publib.Publication, kind publib.ContentKind) (string, error) {
	if len(p.Content.Media) == 0 {
		return "", fmt.Errorf("instagram requires at least one media item")
	}
	body := publishRequest{
		Message:  p.Content.Text,
		Kind:     string(kind),
		Hashtags: p.Content.Hashtags,
		Mentions: p.Content.Mentions,
	}
	for _, m := range p.Content.Media {
		body.MediaURLs = append(body.MediaURLs, m.URL)
	}
	resp, err := postJSON(ctx, i.client, joinURL(i.baseURL, "/instagram/media"), token, body)
	if err != nil {
		return "", err
	}
	return resp.Id, nil
}

var _ publib.Publisher = (*InstagramPublisher)(nil)
