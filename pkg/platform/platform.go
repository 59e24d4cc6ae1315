// Package platform implements the outbound adapters for social networks:
// publishers that push publications to a platform's REST API and the HTTP
// client for the remote asset pipeline. It is the only package that speaks
// to the networks; everything above it works against publib ports.
package platform

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pubdeck/pubdeck/pkg/publib"
)

// PlatformRouter maps platform ids to Publisher implementations.
// It is the central dispatch point for platform-agnostic publishing.
// The zero value is not usable; use NewPlatformRouter to create one.
type PlatformRouter struct {
	routes map[publib.Platform]publib.Publisher
}

// NewPlatformRouter creates a router pre-configured with the Facebook and
// Instagram publishers against baseURL using the provided HTTP client.
func NewPlatformRouter(client *http.Client, baseURL string) *PlatformRouter {
	if client == nil {
		client = http.DefaultClient
	}
	r := &PlatformRouter{
		routes: make(map[publib.Platform]publib.Publisher),
	}
	r.routes[publib.PlatformFacebook] = NewFacebookPublisher(client, baseURL)
	r.routes[publib.PlatformInstagram] = NewInstagramPublisher(client, baseURL)
	return r
}

// Register adds or replaces the publisher for the given platform.
func (r *PlatformRouter) Register(platform publib.Platform, p publib.Publisher) {
	r.routes[platform] = p
}

// Publisher resolves the publisher for a platform. Unknown platforms list
// the supported set in the error.
func (r *PlatformRouter) Publisher(platform publib.Platform) (publib.Publisher, error) {
	p, ok := r.routes[platform]
	if !ok {
		supported := make([]string, 0, len(r.routes))
		for known := range r.routes {
			supported = append(supported, string(known))
		}
		sort.Strings(supported)
		return nil, fmt.Errorf("unsupported platform %q (supported: %s)",
			platform, strings.Join(supported, ", "))
	}
	return p, nil
}

var _ publib.Router = (*PlatformRouter)(nil)
