package product

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-shop-nosql/internal/application/image"
	"github.com/go-shop-nosql/internal/domain"
	"github.com/go-shop-nosql/internal/pkg/clock"
	"github.com/go-shop-nosql/internal/pkg/id"
	"github.com/go-shop-nosql/internal/pkg/validate"
)

const DefaultMaxImages = 5

type Service interface {
	Create(ctx context.Context, req domain.CreateProductRequest, images []image.UploadInput) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Update(ctx context.Context, productID string, req domain.UpdateProductRequest, images []image.UploadInput) (*domain.Product, error)
	Delete(ctx context.Context, productID string) error
	Images(ctx context.Context, productID string) ([]string, error)
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Scan(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, productID string, req domain.UpdateProductRequest, images []string) (*domain.Product, error)
	Delete(ctx context.Context, productID string) (*domain.Product, error)
}

type service struct {
	products  productStore
	images    image.Service
	clock     clock.Clocker
	maxImages int
}

type ServiceDeps struct {
	ProductRepo  productStore
	ImageService image.Service
	Clock        clock.Clocker
	MaxImages    int
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		products:  deps.ProductRepo,
		images:    deps.ImageService,
		clock:     deps.Clock,
		maxImages: deps.MaxImages,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.maxImages <= 0 {
		s.maxImages = DefaultMaxImages
	}
	return s
}

func (s *service) Create(ctx context.Context, req domain.CreateProductRequest, images []image.UploadInput) (*domain.Product, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	if err := s.checkImageCount(images); err != nil {
		return nil, err
	}

	productID := id.New()
	keys, err := s.uploadAll(ctx, productID, images)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	p := &domain.Product{
		ProductID:          productID,
		Name:               req.Name,
		Description:        req.Description,
		Images:             keys,
		Sizes:              nonNil(req.Sizes),
		Colors:             nonNil(req.Colors),
		Price:              *req.Price,
		ProductInfo:        req.ProductInfo,
		ShippingAndReturns: req.ShippingAndReturns,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.products.Put(ctx, p); err != nil {
		s.images.DeleteAll(ctx, keys)
		return nil, fmt.Errorf("save product: %w", err)
	}
	slog.Info("product created", "product_id", productID, "images", len(keys))
	return p, nil
}

func (s *service) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.Scan(ctx)
}

func (s *service) Get(ctx context.Context, productID string) (*domain.Product, error) {
	return s.products.Get(ctx, productID)
}

// Update changes only the fields present in req. Uploaded images replace the
// stored list and the previous objects are removed.
func (s *service) Update(ctx context.Context, productID string, req domain.UpdateProductRequest, images []image.UploadInput) (*domain.Product, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	if err := s.checkImageCount(images); err != nil {
		return nil, err
	}
	existing, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	var keys []string
	if len(images) > 0 {
		if keys, err = s.uploadAll(ctx, productID, images); err != nil {
			return nil, err
		}
	}
	updated, err := s.products.Update(ctx, productID, req, keys)
	if err != nil {
		s.images.DeleteAll(ctx, keys)
		return nil, err
	}
	if keys != nil {
		s.images.DeleteAll(ctx, existing.Images)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, productID string) error {
	old, err := s.products.Delete(ctx, productID)
	if err != nil {
		return err
	}
	s.images.DeleteAll(ctx, old.Images)
	slog.Info("product deleted", "product_id", productID)
	return nil
}

func (s *service) Images(ctx context.Context, productID string) ([]string, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return nonNil(p.Images), nil
}

func (s *service) checkImageCount(images []image.UploadInput) error {
	if len(images) > s.maxImages {
		return fmt.Errorf("at most %d images allowed: %w", s.maxImages, domain.ErrBadRequest)
	}
	return nil
}

// uploadAll stores every image or none: on failure the already stored
// objects are removed.
func (s *service) uploadAll(ctx context.Context, productID string, images []image.UploadInput) ([]string, error) {
	keys := make([]string, 0, len(images))
	for _, in := range images {
		key, err := s.images.Upload(ctx, productID, in)
		if err != nil {
			s.images.DeleteAll(ctx, keys)
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
