package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/inventory/internal/event"
	"github.com/tuanvumaihuynh/inventory/internal/model"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/pkg/ptr"
	"github.com/tuanvumaihuynh/inventory/pkg/validator"
)

type AddProductParams struct {
	Name     string  `validate:"notblank"`
	Quantity int     `validate:"gte=0,lte=2147483647"`
	Price    float64 `validate:"finite,gte=0"`
	Category string  `validate:"notblank"`
}

// normalize trims the free text fields.
func (p AddProductParams) normalize() AddProductParams {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	return p
}

type ProductService interface {
	// AddProduct stores a new product; the store assigns its id.
	AddProduct(ctx context.Context, params AddProductParams) (model.Product, error)
	// DeleteProduct removes the product with id and returns the number of
	// removed rows. A missing id is not an error.
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
}

type productService struct {
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

// NewProductService creates the product service. outboxMsgRepo may be nil to
// disable change events.
func NewProductService(
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) AddProduct(ctx context.Context, params AddProductParams) (model.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductService.AddProduct")
	defer span.End()

	params = params.normalize()
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, validationError(err)
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			CreateProduct(ctx, repository.CreateProductParams{
				Name:     params.Name,
				Quantity: params.Quantity,
				Price:    params.Price,
				Category: params.Category,
			})
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return publishEvent(ctx, s.outboxMsgRepo, db, event.TopicProductAdded,
			ptr.New(strconv.FormatInt(product.ID, 10)),
			event.ProductAddedEvent{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  product.Quantity,
				Price:     product.Price,
				Category:  product.Category,
			})
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID))

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "ProductService.DeleteProduct",
		trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	var affected int64
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		affected, err = s.productRepo.WithDB(db).DeleteProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}

		if affected == 0 {
			return nil
		}

		return publishEvent(ctx, s.outboxMsgRepo, db, event.TopicProductDeleted,
			ptr.New(strconv.FormatInt(id, 10)),
			event.ProductDeletedEvent{ProductID: id})
	}); err != nil {
		return 0, fmt.Errorf("db with tx: %w", err)
	}

	return affected, nil
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductService.ListAllProducts")
	defer span.End()

	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}
