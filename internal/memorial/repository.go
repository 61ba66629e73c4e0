package memorial

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repository defines persistence operations for memorials and their photos.
// Lookups scoped to an owner return (nil, nil) when no owned row exists so
// the service can translate absence into its own not-found outcome.
type Repository interface {
	ListSlugsByPrefix(ctx context.Context, prefix string) ([]string, error)
	Insert(ctx context.Context, m *Memorial) error
	GetOwned(ctx context.Context, ownerID, id string) (*Memorial, error)
	GetBySlug(ctx context.Context, slug string) (*Memorial, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Memorial, error)
	Update(ctx context.Context, m *Memorial) error
	Delete(ctx context.Context, id string) error

	InsertPhoto(ctx context.Context, p *Photo) error
	ListPhotos(ctx context.Context, memorialID string) ([]Photo, error)
	GetPhoto(ctx context.Context, memorialID, photoID string) (*Photo, error)
	DeletePhoto(ctx context.Context, photoID string) error
	DeletePhotosByMemorial(ctx context.Context, memorialID string) error
}

// GormRepository persists memorials using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger}, nil
}

var _ Repository = (*GormRepository)(nil)

// ListSlugsByPrefix returns every existing slug starting with the prefix.
func (r *GormRepository) ListSlugsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return nil, eris.New("slug prefix is required")
	}

	var slugs []string
	err := r.db.WithContext(ctx).
		Model(&Memorial{}).
		Where("slug LIKE ?", trimmed+"%").
		Pluck("slug", &slugs).Error
	if err != nil {
		r.logError(logrus.Fields{"prefix": trimmed}, err, "listing slugs by prefix")
		return nil, eris.Wrapf(err, "listing slugs by prefix: %s", trimmed)
	}

	return slugs, nil
}

// Insert stores a new memorial row. A unique-index conflict on the slug
// column is reported as errSlugTaken so the caller can retry with the next
// disambiguated candidate.
func (r *GormRepository) Insert(ctx context.Context, m *Memorial) error {
	if m == nil {
		return eris.New("memorial is nil")
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if eris.Is(err, gorm.ErrDuplicatedKey) {
			return errSlugTaken
		}
		r.logError(logrus.Fields{"slug": m.Slug}, err, "inserting memorial")
		return eris.Wrapf(err, "inserting memorial: %s", m.Slug)
	}

	return nil
}

// GetOwned returns the memorial with the given id when it belongs to ownerID,
// or nil when no such owned row exists.
func (r *GormRepository) GetOwned(ctx context.Context, ownerID, id string) (*Memorial, error) {
	if ownerID == "" || id == "" {
		return nil, eris.New("owner id and memorial id are required")
	}

	var m Memorial
	err := r.db.WithContext(ctx).First(&m, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"memorial_id": id}, err, "fetching owned memorial")
		return nil, eris.Wrapf(err, "fetching owned memorial: %s", id)
	}

	return &m, nil
}

// GetBySlug returns the memorial for the provided slug or nil when not found.
func (r *GormRepository) GetBySlug(ctx context.Context, slug string) (*Memorial, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	var m Memorial
	err := r.db.WithContext(ctx).First(&m, "slug = ?", trimmed).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"slug": trimmed}, err, "fetching memorial by slug")
		return nil, eris.Wrapf(err, "fetching memorial by slug: %s", trimmed)
	}

	return &m, nil
}

// ListByOwner returns the owner's memorials, newest first.
func (r *GormRepository) ListByOwner(ctx context.Context, ownerID string) ([]Memorial, error) {
	if ownerID == "" {
		return nil, eris.New("owner id is required")
	}

	var memorials []Memorial
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&memorials).Error
	if err != nil {
		r.logError(nil, err, "listing memorials by owner")
		return nil, eris.Wrap(err, "listing memorials by owner")
	}

	return memorials, nil
}

// Update persists the memorial row.
func (r *GormRepository) Update(ctx context.Context, m *Memorial) error {
	if m == nil || m.ID == "" {
		return eris.New("memorial with id is required")
	}

	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		r.logError(logrus.Fields{"memorial_id": m.ID}, err, "updating memorial")
		return eris.Wrapf(err, "updating memorial: %s", m.ID)
	}

	return nil
}

// Delete removes the memorial row.
func (r *GormRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return eris.New("memorial id is required")
	}

	if err := r.db.WithContext(ctx).Delete(&Memorial{}, "id = ?", id).Error; err != nil {
		r.logError(logrus.Fields{"memorial_id": id}, err, "deleting memorial")
		return eris.Wrapf(err, "deleting memorial: %s", id)
	}

	return nil
}

// InsertPhoto stores a gallery photo row.
func (r *GormRepository) InsertPhoto(ctx context.Context, p *Photo) error {
	if p == nil {
		return eris.New("photo is nil")
	}

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		r.logError(logrus.Fields{"memorial_id": p.MemorialID}, err, "inserting photo")
		return eris.Wrap(err, "inserting photo")
	}

	return nil
}

// ListPhotos returns the gallery photos for a memorial.
func (r *GormRepository) ListPhotos(ctx context.Context, memorialID string) ([]Photo, error) {
	if memorialID == "" {
		return nil, eris.New("memorial id is required")
	}

	var photos []Photo
	err := r.db.WithContext(ctx).
		Where("memorial_id = ?", memorialID).
		Order("created_at ASC").
		Find(&photos).Error
	if err != nil {
		r.logError(logrus.Fields{"memorial_id": memorialID}, err, "listing photos")
		return nil, eris.Wrapf(err, "listing photos for memorial: %s", memorialID)
	}

	return photos, nil
}

// GetPhoto returns the photo when it belongs to the memorial, or nil.
func (r *GormRepository) GetPhoto(ctx context.Context, memorialID, photoID string) (*Photo, error) {
	if memorialID == "" || photoID == "" {
		return nil, eris.New("memorial id and photo id are required")
	}

	var p Photo
	err := r.db.WithContext(ctx).First(&p, "id = ? AND memorial_id = ?", photoID, memorialID).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"photo_id": photoID}, err, "fetching photo")
		return nil, eris.Wrapf(err, "fetching photo: %s", photoID)
	}

	return &p, nil
}

// DeletePhoto removes one gallery photo row.
func (r *GormRepository) DeletePhoto(ctx context.Context, photoID string) error {
	if photoID == "" {
		return eris.New("photo id is required")
	}

	if err := r.db.WithContext(ctx).Delete(&Photo{}, "id = ?", photoID).Error; err != nil {
		r.logError(logrus.Fields{"photo_id": photoID}, err, "deleting photo")
		return eris.Wrapf(err, "deleting photo: %s", photoID)
	}

	return nil
}

// DeletePhotosByMemorial removes every gallery photo row of a memorial.
func (r *GormRepository) DeletePhotosByMemorial(ctx context.Context, memorialID string) error {
	if memorialID == "" {
		return eris.New("memorial id is required")
	}

	if err := r.db.WithContext(ctx).Delete(&Photo{}, "memorial_id = ?", memorialID).Error; err != nil {
		r.logError(logrus.Fields{"memorial_id": memorialID}, err, "deleting photos by memorial")
		return eris.Wrapf(err, "deleting photos for memorial: %s", memorialID)
	}

	return nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
