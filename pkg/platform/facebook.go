package platform

import (
	"context"
	"net/http"

	"github.com/pubdeck/pubdeck/pkg/publib"
)

// FacebookPublisher posts publications to the Facebook feed endpoint.
type FacebookPublisher struct {
	client  *http.Client
	baseURL string
}

// NewFacebookPublisher creates a publisher against baseURL.
func NewFacebookPublisher(client *http.Client, baseURL string) *FacebookPublisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &FacebookPublisher{client: client, baseURL: baseURL}
}

// Publish sends the publication to Facebook and returns the remote post id.
func (f *FacebookPublisher) Publish(ctx context.Context, token string, p *publib.Publication, kind publib.ContentKind) (string, error) {
	body := publishRequest{
		Message:  p.Content.Text,
		Kind:     string(kind),
		Hashtags: p.Content.Hashtags,
		Mentions: p.Content.Mentions,
		Links:    p.Content.Links,
	}
	for _, m := range p.Content.Media {
		body.MediaURLs = append(body.MediaURLs, m.URL)
	}
	resp, err := postJSON(ctx, f.client, joinURL(f.baseURL, "/facebook/feed"), token, body)
	if err != nil {
		return "", err
	}
	return resp.Id, nil
}

var _ publib.Publisher = (*FacebookPublisher)(nil)
