package store

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ErrProductNotFound indicates the ordered product does not exist or is inactive.
var ErrProductNotFound = eris.New("product not found")

// OrderInput carries the fields a customer submits when placing an order.
type OrderInput struct {
	ProductID      string `validate:"required"`
	MemorialID     string
	CustomText     string
	CustomPhotoURL string `validate:"omitempty,url"`
	Quantity       int

	ShippingName    string `validate:"required,max=200"`
	ShippingAddress string `validate:"required,max=300"`
	ShippingCity    string `validate:"required,max=100"`
	ShippingState   string `validate:"required,max=100"`
	ShippingZip     string `validate:"required,max=20"`
}

// Service defines the keepsake store operations.
type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	PlaceOrder(ctx context.Context, ownerID string, in OrderInput) (*Order, error)
}

type service struct {
	repo   Repository
	logger *logrus.Logger
}

var _ Service = (*service)(nil)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewService wires the store service with its dependencies.
func NewService(repo Repository, logger *logrus.Logger) (Service, error) {
	if repo == nil {
		return nil, eris.New("store repository is required")
	}

	return &service{repo: repo, logger: logger}, nil
}

// ListProducts returns the active keepsake products.
func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListActiveProducts(ctx)
}

// PlaceOrder validates the input, prices the order from the product row, and
// inserts it. Pricing is denormalized onto the order so later product edits
// do not rewrite order history.
func (s *service) PlaceOrder(ctx context.Context, ownerID string, in OrderInput) (*Order, error) {
	if ownerID == "" {
		return nil, eris.New("owner id is required")
	}

	in.ShippingName = strings.TrimSpace(in.ShippingName)
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	in.ShippingCity = strings.TrimSpace(in.ShippingCity)
	in.ShippingState = strings.TrimSpace(in.ShippingState)
	in.ShippingZip = strings.TrimSpace(in.ShippingZip)

	if err := validate.Struct(in); err != nil {
		return nil, eris.Wrap(err, "validating order")
	}

	product, err := s.repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, eris.Wrap(err, "loading ordered product")
	}
	if product == nil || !product.IsActive {
		return nil, eris.Wrapf(ErrProductNotFound, "product: %s", in.ProductID)
	}

	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	order := &Order{
		OwnerID:         ownerID,
		MemorialID:      in.MemorialID,
		ProductID:       product.ID,
		ProductName:     product.Name,
		CustomText:      in.CustomText,
		CustomPhotoURL:  in.CustomPhotoURL,
		Quantity:        quantity,
		UnitPrice:       product.BasePrice,
		TotalPrice:      product.BasePrice * int64(quantity),
		ShippingName:    in.ShippingName,
		ShippingAddress: in.ShippingAddress,
		ShippingCity:    in.ShippingCity,
		ShippingState:   in.ShippingState,
		ShippingZip:     in.ShippingZip,
	}

	if err := s.repo.InsertOrder(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"product_id": product.ID,
				"error":      err.Error(),
			}).Error("placing order failed")
		}
		return nil, eris.Wrap(err, "placing order")
	}

	return order, nil
}
