package memorial

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/wieldyrabbit783/cherished-memories/internal/storage"
)

// Service defines the memorial lifecycle operations. Every mutating operation
// takes the acting owner's id explicitly; nothing is read from ambient state.
type Service interface {
	Create(ctx context.Context, ownerID string, fields Fields, cover *FileUpload, photos []FileUpload) (*CreateResult, error)
	Update(ctx context.Context, ownerID, memorialID string, fields Fields, newCover *FileUpload, newPhotos []FileUpload) (*UpdateResult, error)
	Delete(ctx context.Context, ownerID, memorialID string) error
	RemovePhoto(ctx context.Context, ownerID, memorialID, photoID string) error
	ResolveBySlug(ctx context.Context, slug string) (*View, error)
	GetOwned(ctx context.Context, ownerID, memorialID string) (*View, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Memorial, error)
}

// View is a memorial together with its gallery, as rendered on the public page
// and the edit form. An empty gallery is valid.
type View struct {
	Memorial Memorial
	Photos   []Photo
}

// GalleryFailure reports one gallery file that could not be stored.
type GalleryFailure struct {
	Filename string
	Reason   string
}

// GalleryReport is the per-file outcome of a batch gallery upload. Failures
// do not abort the surrounding operation but are returned to the caller
// instead of being dropped.
type GalleryReport struct {
	Uploaded []Photo
	Failed   []GalleryFailure
}

// CreateResult is the outcome of a successful creation.
type CreateResult struct {
	Memorial Memorial
	Gallery  GalleryReport
}

// UpdateResult is the outcome of a successful update.
type UpdateResult struct {
	Memorial Memorial
	Gallery  GalleryReport
}

type service struct {
	repo       Repository
	store      storage.ObjectStore
	uploader   *assetUploader
	publicBase string
	logger     *logrus.Logger
	sentryHub  *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the memorial service with its dependencies. publicBase is
// the URL prefix the object store serves public objects under; it is only
// used to recover storage paths from legacy rows that predate stored paths.
func NewService(repo Repository, store storage.ObjectStore, publicBase string, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if repo == nil {
		return nil, eris.New("memorial repository is required")
	}
	if store == nil {
		return nil, eris.New("object store is required")
	}

	return &service{
		repo:       repo,
		store:      store,
		uploader:   newAssetUploader(store),
		publicBase: publicBase,
		logger:     logger,
		sentryHub:  hub,
	}, nil
}

// Create validates the fields, allocates a unique slug, uploads the cover,
// inserts the memorial row, and stores the gallery best-effort. Validation
// failures surface before any network call. If the row insert fails after the
// cover upload succeeded, the cover object is compensated away rather than
// orphaned.
func (s *service) Create(ctx context.Context, ownerID string, fields Fields, cover *FileUpload, photos []FileUpload) (*CreateResult, error) {
	if ownerID == "" {
		return nil, eris.New("owner id is required")
	}

	trimmed := fields.normalized()
	if err := validateFields(trimmed, true, cover != nil); err != nil {
		return nil, err
	}

	slug, err := s.allocateSlug(ctx, trimmed.FullName)
	if err != nil {
		s.recordError(logrus.Fields{"owner_id": ownerID}, err, "allocating slug")
		return nil, err
	}

	var (
		coverAsset Asset
		created    *Memorial
	)

	workflow := &saga{logger: s.logger}
	workflow.add(sagaStep{
		name: "upload cover",
		run: func(ctx context.Context) error {
			asset, err := s.uploader.uploadCover(ctx, ownerID, slug, *cover)
			if err != nil {
				return err
			}
			coverAsset = asset
			return nil
		},
		compensate: func(ctx context.Context) error {
			return s.store.Remove(ctx, []string{coverAsset.Path})
		},
	})
	workflow.add(sagaStep{
		name: "insert memorial",
		run: func(ctx context.Context) error {
			m, err := s.insertWithSlugRetry(ctx, ownerID, trimmed, coverAsset, slug)
			if err != nil {
				return err
			}
			created = m
			return nil
		},
	})

	if err := workflow.execute(ctx); err != nil {
		s.recordError(logrus.Fields{"owner_id": ownerID, "slug": slug}, err, "creating memorial")
		return nil, err
	}

	gallery := s.storeGallery(ctx, ownerID, created.Slug, created.ID, photos)

	return &CreateResult{Memorial: *created, Gallery: gallery}, nil
}

// insertWithSlugRetry inserts the row, bumping the slug's numeric suffix on a
// unique-index conflict. Concurrent creations with the same base name land on
// distinct slugs instead of racing to the same one.
func (s *service) insertWithSlugRetry(ctx context.Context, ownerID string, fields Fields, coverAsset Asset, slug string) (*Memorial, error) {
	for attempt := 1; ; attempt++ {
		m := &Memorial{
			OwnerID:        ownerID,
			FullName:       fields.FullName,
			BirthDate:      fields.BirthDate,
			DeathDate:      fields.DeathDate,
			Location:       fields.Location,
			Biography:      fields.Biography,
			VideoURL:       fields.VideoURL,
			TributeMessage: fields.TributeMessage,
			CoverImageURL:  coverAsset.PublicURL,
			CoverImagePath: coverAsset.Path,
			Slug:           slug,
		}

		err := s.repo.Insert(ctx, m)
		if err == nil {
			return m, nil
		}

		if !eris.Is(err, errSlugTaken) {
			return nil, &PersistenceError{Op: "inserting memorial", Err: err}
		}

		if attempt > slugConflictAttempts {
			return nil, &PersistenceError{Op: "allocating unique slug", Err: err}
		}

		slug = nextSlug(slug, attempt)
	}
}

// Update persists field changes to an owned memorial, optionally replacing the
// cover and appending gallery photos. The slug is never recomputed.
func (s *service) Update(ctx context.Context, ownerID, memorialID string, fields Fields, newCover *FileUpload, newPhotos []FileUpload) (*UpdateResult, error) {
	m, err := s.requireOwned(ctx, ownerID, memorialID)
	if err != nil {
		return nil, err
	}

	trimmed := fields.normalized()
	if err := validateFields(trimmed, false, false); err != nil {
		return nil, err
	}

	if newCover != nil {
		asset, err := s.uploader.uploadCover(ctx, ownerID, m.Slug, *newCover)
		if err != nil {
			s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "uploading replacement cover")
			return nil, err
		}
		m.CoverImageURL = asset.PublicURL
		m.CoverImagePath = asset.Path
	}

	m.FullName = trimmed.FullName
	m.BirthDate = trimmed.BirthDate
	m.DeathDate = trimmed.DeathDate
	m.Location = trimmed.Location
	m.Biography = trimmed.Biography
	m.VideoURL = trimmed.VideoURL
	m.TributeMessage = trimmed.TributeMessage

	if err := s.repo.Update(ctx, m); err != nil {
		s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "persisting memorial update")
		return nil, &PersistenceError{Op: "updating memorial", Err: err}
	}

	gallery := s.storeGallery(ctx, ownerID, m.Slug, m.ID, newPhotos)

	return &UpdateResult{Memorial: *m, Gallery: gallery}, nil
}

// Delete removes an owned memorial, its photo rows, and the stored objects.
// Object cleanup is best-effort: cover and gallery removals are isolated from
// each other and their failures are logged, not surfaced. Row deletions are
// the authoritative part and do surface failures.
func (s *service) Delete(ctx context.Context, ownerID, memorialID string) error {
	m, err := s.requireOwned(ctx, ownerID, memorialID)
	if err != nil {
		return err
	}

	photos, err := s.repo.ListPhotos(ctx, m.ID)
	if err != nil {
		s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "reading photos for delete")
		return &PersistenceError{Op: "listing photos", Err: err}
	}

	var photoPaths []string
	for _, photo := range photos {
		path, ok := s.objectPath(photo.PhotoPath, photo.PhotoURL)
		if !ok {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{
					"photo_id":  photo.ID,
					"photo_url": photo.PhotoURL,
				}).Warn("skipping photo with underivable storage path")
			}
			continue
		}
		photoPaths = append(photoPaths, path)
	}

	if len(photoPaths) > 0 {
		if err := s.store.Remove(ctx, photoPaths); err != nil {
			s.recordError(logrus.Fields{"memorial_id": m.ID, "count": len(photoPaths)}, err, "removing gallery objects")
		}
	}

	if coverPath, ok := s.objectPath(m.CoverImagePath, m.CoverImageURL); ok {
		if err := s.store.Remove(ctx, []string{coverPath}); err != nil {
			s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "removing cover object")
		}
	}

	if err := s.repo.DeletePhotosByMemorial(ctx, m.ID); err != nil {
		s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "deleting photo rows")
		return &PersistenceError{Op: "deleting photo rows", Err: err}
	}

	if err := s.repo.Delete(ctx, m.ID); err != nil {
		s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "deleting memorial row")
		return &PersistenceError{Op: "deleting memorial", Err: err}
	}

	return nil
}

// RemovePhoto deletes one gallery photo of an owned memorial. The row delete
// is not conditioned on the object removal succeeding.
func (s *service) RemovePhoto(ctx context.Context, ownerID, memorialID, photoID string) error {
	m, err := s.requireOwned(ctx, ownerID, memorialID)
	if err != nil {
		return err
	}

	photo, err := s.repo.GetPhoto(ctx, m.ID, photoID)
	if err != nil {
		s.recordError(logrus.Fields{"photo_id": photoID}, err, "fetching photo for removal")
		return &PersistenceError{Op: "fetching photo", Err: err}
	}
	if photo == nil {
		return eris.Wrapf(ErrNotFound, "photo: %s", photoID)
	}

	if path, ok := s.objectPath(photo.PhotoPath, photo.PhotoURL); ok {
		if err := s.store.Remove(ctx, []string{path}); err != nil {
			s.recordError(logrus.Fields{"photo_id": photo.ID}, err, "removing photo object")
		}
	}

	if err := s.repo.DeletePhoto(ctx, photo.ID); err != nil {
		s.recordError(logrus.Fields{"photo_id": photo.ID}, err, "deleting photo row")
		return &PersistenceError{Op: "deleting photo", Err: err}
	}

	return nil
}

// ResolveBySlug looks up a memorial for anonymous display. Absence yields
// ErrNotFound, which callers render as a plain not-found page.
func (s *service) ResolveBySlug(ctx context.Context, slug string) (*View, error) {
	m, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		s.recordError(logrus.Fields{"slug": slug}, err, "resolving memorial by slug")
		return nil, &PersistenceError{Op: "resolving memorial", Err: err}
	}
	if m == nil {
		return nil, eris.Wrapf(ErrNotFound, "slug: %s", slug)
	}

	photos, err := s.repo.ListPhotos(ctx, m.ID)
	if err != nil {
		s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "listing photos for public page")
		return nil, &PersistenceError{Op: "listing photos", Err: err}
	}

	return &View{Memorial: *m, Photos: photos}, nil
}

// GetOwned returns an owned memorial with its gallery, as loaded into the edit form.
func (s *service) GetOwned(ctx context.Context, ownerID, memorialID string) (*View, error) {
	m, err := s.requireOwned(ctx, ownerID, memorialID)
	if err != nil {
		return nil, err
	}

	photos, err := s.repo.ListPhotos(ctx, m.ID)
	if err != nil {
		s.recordError(logrus.Fields{"memorial_id": m.ID}, err, "listing photos")
		return nil, &PersistenceError{Op: "listing photos", Err: err}
	}

	return &View{Memorial: *m, Photos: photos}, nil
}

// ListByOwner returns the owner's memorials for the dashboard, newest first.
func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]Memorial, error) {
	if ownerID == "" {
		return nil, eris.New("owner id is required")
	}

	memorials, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.recordError(nil, err, "listing memorials by owner")
		return nil, &PersistenceError{Op: "listing memorials", Err: err}
	}

	return memorials, nil
}

// requireOwned loads the memorial scoped to the acting owner. A memorial that
// exists but belongs to someone else is indistinguishable from one that does
// not exist.
func (s *service) requireOwned(ctx context.Context, ownerID, memorialID string) (*Memorial, error) {
	if ownerID == "" {
		return nil, eris.New("owner id is required")
	}
	if memorialID == "" {
		return nil, eris.New("memorial id is required")
	}

	m, err := s.repo.GetOwned(ctx, ownerID, memorialID)
	if err != nil {
		s.recordError(logrus.Fields{"memorial_id": memorialID}, err, "fetching owned memorial")
		return nil, &PersistenceError{Op: "fetching memorial", Err: err}
	}
	if m == nil {
		return nil, eris.Wrapf(ErrNotFound, "memorial: %s", memorialID)
	}

	return m, nil
}

// storeGallery uploads each file and inserts its row only on upload success.
// Per-file failures do not abort the batch; they are collected into the
// report. A row insert that fails after its upload succeeded removes the
// object again so nothing orphans.
func (s *service) storeGallery(ctx context.Context, ownerID, slug, memorialID string, files []FileUpload) GalleryReport {
	var report GalleryReport

	for _, file := range files {
		asset, err := s.uploader.uploadPhoto(ctx, ownerID, slug, file)
		if err != nil {
			s.recordError(logrus.Fields{"memorial_id": memorialID, "filename": file.Filename}, err, "uploading gallery photo")
			report.Failed = append(report.Failed, GalleryFailure{Filename: file.Filename, Reason: err.Error()})
			continue
		}

		photo := &Photo{
			MemorialID: memorialID,
			PhotoURL:   asset.PublicURL,
			PhotoPath:  asset.Path,
		}

		if err := s.repo.InsertPhoto(ctx, photo); err != nil {
			s.recordError(logrus.Fields{"memorial_id": memorialID, "filename": file.Filename}, err, "inserting gallery photo row")
			if removeErr := s.store.Remove(ctx, []string{asset.Path}); removeErr != nil {
				s.recordError(logrus.Fields{"path": asset.Path}, removeErr, "removing photo object after failed insert")
			}
			report.Failed = append(report.Failed, GalleryFailure{Filename: file.Filename, Reason: err.Error()})
			continue
		}

		report.Uploaded = append(report.Uploaded, *photo)
	}

	return report
}

// objectPath prefers the stored storage path and falls back to reverse-parsing
// the public URL for rows that predate stored paths.
func (s *service) objectPath(storedPath, publicURL string) (string, bool) {
	if storedPath != "" {
		return storedPath, true
	}
	return objectPathFromURL(s.publicBase, publicURL)
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
