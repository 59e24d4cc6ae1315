package publib

import (
	"testing"
	"time"
)

func validPublication() *Publication {
	return &Publication{
		UserId:    "user-1",
		Content:   Content{Text: "hello world"},
		Platforms: []Platform{PlatformFacebook},
	}
}

func TestValidate_OK(t *testing.T) {
	p := validPublication()
	if errs := p.Validate(time.Now()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_EmptyContent(t *testing.T) {
	p := validPublication()
	p.Content = Content{Text: "   "}
	errs := p.Validate(time.Now())
	if len(errs) != 1 || errs[0] != "content must have text or media" {
		t.Fatalf("expected content error, got %v", errs)
	}
}

func TestValidate_MediaOnlyIsOK(t *testing.T) {
	p := validPublication()
	p.Content = Content{Media: []MediaItem{{AssetID: "a1", URL: "https://cdn/x.jpg", Type: AssetImage}}}
	if errs := p.Validate(time.Now()); len(errs) != 0 {
		t.Fatalf("expected media-only content to be valid, got %v", errs)
	}
}

func TestValidate_NoPlatforms(t *testing.T) {
	p := validPublication()
	p.Platforms = nil
	errs := p.Validate(time.Now())
	if len(errs) != 1 || errs[0] != "at least one platform is required" {
		t.Fatalf("expected platform error, got %v", errs)
	}
}

func TestValidate_UnknownPlatform(t *testing.T) {
	p := validPublication()
	p.Platforms = []Platform{"myspace"}
	errs := p.Validate(time.Now())
	if len(errs) != 1 || errs[0] != "unknown platform: myspace" {
		t.Fatalf("expected unknown platform error, got %v", errs)
	}
}

func TestValidate_DuplicatePlatform(t *testing.T) {
	p := validPublication()
	p.Platforms = []Platform{PlatformFacebook, PlatformFacebook}
	errs := p.Validate(time.Now())
	if len(errs) != 1 || errs[0] != "duplicate platform: facebook" {
		t.Fatalf("expected duplicate platform error, got %v", errs)
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	p := validPublication()
	p.Kinds = map[Platform]ContentKind{PlatformFacebook: "carousel"}
	errs := p.Validate(time.Now())
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}

func TestValidate_PastSchedule(t *testing.T) {
	now := time.Now()
	p := validPublication()
	p.ScheduledAt = now.Add(-time.Minute)
	errs := p.Validate(now)
	if len(errs) != 1 || errs[0] != "scheduled date must be in the future" {
		t.Fatalf("expected past schedule error, got %v", errs)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	p := &Publication{}
	errs := p.Validate(time.Now())
	if len(errs) != 2 {
		t.Fatalf("expected content and platform errors, got %v", errs)
	}
}

func TestKindFor_Default(t *testing.T) {
	p := validPublication()
	if got := p.KindFor(PlatformFacebook); got != KindPost {
		t.Errorf("expected default kind post, got %q", got)
	}
	p.Kinds = map[Platform]ContentKind{PlatformFacebook: KindReel}
	if got := p.KindFor(PlatformFacebook); got != KindReel {
		t.Errorf("expected reel, got %q", got)
	}
}

func TestTargets(t *testing.T) {
	p := validPublication()
	if !p.Targets(PlatformFacebook) {
		t.Error("expected facebook targeted")
	}
	if p.Targets(PlatformInstagram) {
		t.Error("instagram must not be targeted")
	}
}
