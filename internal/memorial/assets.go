package memorial

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/wieldyrabbit783/cherished-memories/internal/storage"
)

// Object roles inside a memorial's storage folder.
const (
	roleCover = "cover"
	rolePhoto = "photo"
)

// FileUpload is a binary file handed to the service by the transport layer.
type FileUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Asset is an uploaded object together with its resolved public URL.
type Asset struct {
	Path      string
	PublicURL string
}

// assetUploader places files into per-owner, per-memorial storage paths. The
// clock and token source are injectable for tests.
type assetUploader struct {
	store storage.ObjectStore
	now   func() time.Time
	token func() string
}

func newAssetUploader(store storage.ObjectStore) *assetUploader {
	return &assetUploader{
		store: store,
		now:   time.Now,
		token: slugToken,
	}
}

// uploadCover stores a cover image under {owner}/{slug}/cover-{millis}.{ext}.
func (u *assetUploader) uploadCover(ctx context.Context, ownerID, slug string, file FileUpload) (Asset, error) {
	return u.upload(ctx, objectKey(ownerID, slug, roleCover, file.Filename, u.now(), ""), file)
}

// uploadPhoto stores a gallery image under {owner}/{slug}/photo-{millis}-{token}.{ext}.
// The token keeps photos uploaded in the same millisecond from colliding.
func (u *assetUploader) uploadPhoto(ctx context.Context, ownerID, slug string, file FileUpload) (Asset, error) {
	return u.upload(ctx, objectKey(ownerID, slug, rolePhoto, file.Filename, u.now(), u.token()), file)
}

func (u *assetUploader) upload(ctx context.Context, key string, file FileUpload) (Asset, error) {
	publicURL, err := u.store.Upload(ctx, key, file.ContentType, file.Body)
	if err != nil {
		return Asset{}, &UploadError{Path: key, Err: err}
	}

	return Asset{Path: key, PublicURL: publicURL}, nil
}

// objectKey builds the storage path {ownerID}/{slug}/{role}-{epochMillis}[-{token}].{ext}.
// The path encodes ownership and memorial association so cleanup can be
// derived from the rows alone.
func objectKey(ownerID, slug, role, filename string, now time.Time, token string) string {
	name := fmt.Sprintf("%s-%d", role, now.UnixMilli())
	if token != "" {
		name += "-" + token
	}
	return fmt.Sprintf("%s/%s/%s.%s", ownerID, slug, name, fileExtension(filename))
}

func fileExtension(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "bin"
	}
	return ext
}

// objectPathFromURL recovers the storage path from a public URL by stripping
// the known public base prefix. Rows written by this service carry the path
// explicitly; this is the fallback for legacy rows, and URLs outside the
// expected prefix are reported as not derivable rather than guessed at.
func objectPathFromURL(publicBase, publicURL string) (string, bool) {
	if publicBase == "" || publicURL == "" {
		return "", false
	}

	prefix := strings.TrimRight(publicBase, "/") + "/"
	derived, ok := strings.CutPrefix(publicURL, prefix)
	if !ok || derived == "" {
		return "", false
	}

	return derived, true
}
