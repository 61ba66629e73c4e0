package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wieldyrabbit783/cherished-memories/internal/store"
)

type productPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	BasePrice   int64  `json:"base_price"`
	ImageURL    string `json:"image_url,omitempty"`
}

type productsResponse struct {
	Status int
	Body   struct {
		Products []productPayload `json:"products"`
	}
}

type placeOrderInput struct {
	Body struct {
		ProductID       string `json:"product_id"`
		MemorialID      string `json:"memorial_id,omitempty"`
		CustomText      string `json:"custom_text,omitempty"`
		CustomPhotoURL  string `json:"custom_photo_url,omitempty"`
		Quantity        int    `json:"quantity,omitempty"`
		ShippingName    string `json:"shipping_name"`
		ShippingAddress string `json:"shipping_address"`
		ShippingCity    string `json:"shipping_city"`
		ShippingState   string `json:"shipping_state"`
		ShippingZip     string `json:"shipping_zip"`
	}
}

type orderResponse struct {
	Status int
	Body   struct {
		ID          string `json:"id"`
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
		Quantity    int    `json:"quantity"`
		UnitPrice   int64  `json:"unit_price"`
		TotalPrice  int64  `json:"total_price"`
		CreatedAt   string `json:"created_at"`
	}
}

func (s *Server) registerStoreRoutes() {
	huma.Get(s.api, "/api/products", s.listProductsHandler, func(op *huma.Operation) {
		op.Summary = "List keepsake products"
	})
	huma.Post(s.api, "/api/orders", s.placeOrderHandler, func(op *huma.Operation) {
		op.Summary = "Place a keepsake order"
		op.DefaultStatus = stdhttp.StatusCreated
	})
}

func (s *Server) listProductsHandler(ctx context.Context, _ *struct{}) (*productsResponse, error) {
	products, err := s.keepsakes.ListProducts(ctx)
	if err != nil {
		return nil, s.translateError(ctx, err, "listing products", nil)
	}

	resp := &productsResponse{Status: stdhttp.StatusOK}
	resp.Body.Products = make([]productPayload, 0, len(products))
	for _, product := range products {
		resp.Body.Products = append(resp.Body.Products, productPayload{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.Description,
			Category:    product.Category,
			BasePrice:   product.BasePrice,
			ImageURL:    product.ImageURL,
		})
	}
	return resp, nil
}

func (s *Server) placeOrderHandler(ctx context.Context, input *placeOrderInput) (*orderResponse, error) {
	ownerID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.keepsakes.PlaceOrder(ctx, ownerID, store.OrderInput{
		ProductID:       input.Body.ProductID,
		MemorialID:      input.Body.MemorialID,
		CustomText:      input.Body.CustomText,
		CustomPhotoURL:  input.Body.CustomPhotoURL,
		Quantity:        input.Body.Quantity,
		ShippingName:    input.Body.ShippingName,
		ShippingAddress: input.Body.ShippingAddress,
		ShippingCity:    input.Body.ShippingCity,
		ShippingState:   input.Body.ShippingState,
		ShippingZip:     input.Body.ShippingZip,
	})
	if err != nil {
		return nil, s.translateError(ctx, err, "placing order", nil)
	}

	resp := &orderResponse{Status: stdhttp.StatusCreated}
	resp.Body.ID = order.ID
	resp.Body.ProductID = order.ProductID
	resp.Body.ProductName = order.ProductName
	resp.Body.Quantity = order.Quantity
	resp.Body.UnitPrice = order.UnitPrice
	resp.Body.TotalPrice = order.TotalPrice
	resp.Body.CreatedAt = order.CreatedAt.UTC().Format(time.RFC3339)
	return resp, nil
}
