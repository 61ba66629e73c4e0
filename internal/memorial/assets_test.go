package memorial

import (
	"testing"
	"time"
)

func TestObjectKeyCover(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1700000000000)
	key := objectKey("owner-1", "jane-doe", roleCover, "portrait.JPG", at, "")

	if key != "owner-1/jane-doe/cover-1700000000000.jpg" {
		t.Fatalf("unexpected cover key %q", key)
	}
}

func TestObjectKeyPhotoCarriesToken(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1700000000000)
	key := objectKey("owner-1", "jane-doe", rolePhoto, "beach.png", at, "a1b2c3d4")

	if key != "owner-1/jane-doe/photo-1700000000000-a1b2c3d4.png" {
		t.Fatalf("unexpected photo key %q", key)
	}
}

func TestFileExtensionDefaults(t *testing.T) {
	t.Parallel()

	if got := fileExtension("photo.jpeg"); got != "jpeg" {
		t.Errorf("expected jpeg, got %q", got)
	}
	if got := fileExtension("archive.tar.gz"); got != "gz" {
		t.Errorf("expected gz, got %q", got)
	}
	if got := fileExtension("noextension"); got != "bin" {
		t.Errorf("expected bin fallback, got %q", got)
	}
}

func TestObjectPathFromURL(t *testing.T) {
	t.Parallel()

	base := "https://cdn.example.com/memorial-images"

	path, ok := objectPathFromURL(base, "https://cdn.example.com/memorial-images/owner-1/jane-doe/photo-1-x.jpg")
	if !ok {
		t.Fatalf("expected path to be derivable")
	}
	if path != "owner-1/jane-doe/photo-1-x.jpg" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestObjectPathFromURLRejectsForeignPrefix(t *testing.T) {
	t.Parallel()

	base := "https://cdn.example.com/memorial-images"

	if _, ok := objectPathFromURL(base, "https://elsewhere.example.com/avatars/photo.jpg"); ok {
		t.Fatalf("expected foreign URL to be rejected")
	}

	if _, ok := objectPathFromURL(base, ""); ok {
		t.Fatalf("expected empty URL to be rejected")
	}

	if _, ok := objectPathFromURL("", "https://cdn.example.com/memorial-images/x.jpg"); ok {
		t.Fatalf("expected empty base to be rejected")
	}
}
