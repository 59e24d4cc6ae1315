package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pubdeck/pubdeck/pkg/publib"
)

// AssetClient talks to the remote asset pipeline over REST. Uploads are
// accepted in processing state and transcoded asynchronously; GetAsset
// reports progress until the asset is completed or failed.
type AssetClient struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewAssetClient creates a client against baseURL authorized with token.
func NewAssetClient(client *http.Client, baseURL, token string) *AssetClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &AssetClient{client: client, baseURL: baseURL, token: token}
}

// UploadAsset submits the file as a multipart form and returns the created
// asset as reported by the pipeline.
func (c *AssetClient) UploadAsset(ctx context.Context, up publib.AssetUpload) (*publib.Asset, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		part, err := form.CreateFormFile("file", up.Name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, up.Body); err != nil {
			pw.CloseWithError(err)
			return
		}
		_ = form.WriteField("user_id", up.UserId)
		_ = form.WriteField("type", string(up.Type))
		_ = form.WriteField("tags", strings.Join(up.Tags, ","))
		if up.MimeType != "" {
			_ = form.WriteField("mime_type", up.MimeType)
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(c.baseURL, "/assets"), pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeAsset(resp)
}

// GetAsset fetches the current processing state of an asset.
func (c *AssetClient) GetAsset(ctx context.Context, id string) (*publib.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		joinURL(c.baseURL, "/assets/"+url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, publib.ErrAssetNotFound
	}
	return decodeAsset(resp)
}

func decodeAsset(resp *http.Response) (*publib.Asset, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("asset pipeline returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var asset publib.Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	return &asset, nil
}

var _ publib.AssetAPI = (*AssetClient)(nil)
