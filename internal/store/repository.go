package store

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the keepsake store.
type Repository interface {
	ListActiveProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	InsertOrder(ctx context.Context, o *Order) error
}

// GormRepository persists store rows using a Gorm database connection.
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

// ListActiveProducts returns the products currently offered, oldest first.
func (r *GormRepository) ListActiveProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&products).Error
	if err != nil {
		r.logError(nil, err, "listing active products")
		return nil, eris.Wrap(err, "listing active products")
	}

	return products, nil
}

// GetProduct returns the product for the given id or nil when not found.
func (r *GormRepository) GetProduct(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, eris.New("product id is required")
	}

	var p Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"product_id": id}, err, "fetching product")
		return nil, eris.Wrapf(err, "fetching product: %s", id)
	}

	return &p, nil
}

// InsertOrder stores a new order row.
func (r *GormRepository) InsertOrder(ctx context.Context, o *Order) error {
	if o == nil {
		return eris.New("order is nil")
	}

	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		r.logError(logrus.Fields{"product_id": o.ProductID}, err, "inserting order")
		return eris.Wrap(err, "inserting order")
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
