package publib

import (
	"context"
	"fmt"
)

// Publisher sends a publication to a single platform and returns the remote
// id the platform assigned.
type Publisher interface {
	Publish(ctx context.Context, token string, p *Publication, kind ContentKind) (remoteId string, err error)
}

// Router resolves the Publisher for a platform.
type Router interface {
	Publisher(platform Platform) (Publisher, error)
}

// TokenSource supplies platform access tokens for a user.
type TokenSource interface {
	AccessToken(platform Platform, userId string) (string, error)
}

// Publish pushes a publication to all of its target platforms, sequentially.
// The first platform failure aborts the run and moves the publication to
// failed; on full success the publication becomes published with remote ids
// recorded per platform.
func (m *Manager) Publish(ctx context.Context, id string, router Router, tokens TokenSource) (*Publication, error) {
	p, err := m.store.GetPublication(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusProcessing {
		if !p.CanPublishNow() {
			return nil, fmt.Errorf("%w: %s", ErrNotPublishable, p.Status)
		}
		// failed cannot reach processing directly; reactivate through draft
		if p.Status == StatusFailed {
			if p, err = m.Transition(ctx, id, StatusDraft); err != nil {
				return nil, err
			}
		}
		if p, err = m.Transition(ctx, id, StatusProcessing); err != nil {
			return nil, err
		}
	}

	if p.RemoteIds == nil {
		p.RemoteIds = make(map[Platform]string, len(p.Platforms))
	}
	for _, platform := range p.Platforms {
		m.handlers.PublishStartHandler(p.Id, platform)
		remoteId, perr := m.publishOne(ctx, p, platform, router, tokens)
		if perr != nil {
			ferr := fmt.Errorf("publish to %s: %w", platform, perr)
			if err := m.MarkFailed(ctx, p.Id, ferr); err != nil {
				return nil, err
			}
			return nil, ferr
		}
		p.RemoteIds[platform] = remoteId
		m.handlers.PublishCompleteHandler(p.Id, platform, remoteId)
	}

	if err := m.store.SavePublication(ctx, p); err != nil {
		return nil, err
	}
	return m.Transition(ctx, p.Id, StatusPublished)
}

func (m *Manager) publishOne(ctx context.Context, p *Publication, platform Platform, router Router, tokens TokenSource) (string, error) {
	publisher, err := router.Publisher(platform)
	if err != nil {
		return "", err
	}
	token, err := tokens.AccessToken(platform, p.UserId)
	if err != nil {
		return "", fmt.Errorf("access token: %w", err)
	}
	return publisher.Publish(ctx, token, p, p.KindFor(platform))
}
