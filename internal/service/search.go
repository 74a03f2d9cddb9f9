package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tuanvumaihuynh/inventory/internal/apperr"
	"github.com/tuanvumaihuynh/inventory/internal/model"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
)

type SearchService interface {
	// Search returns the products matching every "field:substring" token.
	// Without tokens it returns every product.
	Search(ctx context.Context, tokens []string) ([]model.Product, error)
}

type searchService struct {
	logger      *slog.Logger
	productRepo repository.ProductRepository
}

func NewSearchService(logger *slog.Logger, productRepo repository.ProductRepository) SearchService {
	return &searchService{
		logger:      logger.With(slog.String("service", "search")),
		productRepo: productRepo,
	}
}

func (s *searchService) Search(ctx context.Context, tokens []string) ([]model.Product, error) {
	ctx, span := tracer.Start(ctx, "SearchService.Search")
	defer span.End()

	criteria, dropped, err := ParseCriteria(tokens)
	if err != nil {
		return nil, err
	}
	for _, token := range dropped {
		s.logger.DebugContext(ctx, "ignoring search token without field separator", slog.String("token", token))
	}

	products, err := s.productRepo.SearchProducts(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("product repository search products: %w", err)
	}

	span.SetAttributes(
		attribute.Int("search.criteria", len(criteria)),
		attribute.Int("search.results", len(products)),
	)

	return products, nil
}

// ParseCriteria splits each token on its first ':' into a field name and a
// substring. Tokens without ':' are returned in dropped and take no part in
// the filter. Field names are case-insensitive; an unknown field is a
// validation error.
func ParseCriteria(tokens []string) (criteria []model.Criterion, dropped []string, err error) {
	criteria = make([]model.Criterion, 0, len(tokens))
	for _, token := range tokens {
		name, value, found := strings.Cut(token, ":")
		if !found {
			dropped = append(dropped, token)
			continue
		}

		field := model.Field(strings.ToLower(strings.TrimSpace(name)))
		if !field.Valid() {
			return nil, nil, apperr.ValidationErr.WithMsg("unknown search field %q, expected one of %s", name, fieldList())
		}

		criteria = append(criteria, model.Criterion{
			Field: field,
			Op:    model.OpContains,
			Value: value,
		})
	}

	return criteria, dropped, nil
}

func fieldList() string {
	names := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
