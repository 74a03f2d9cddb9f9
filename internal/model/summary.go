package model

// CategorySummary aggregates every product sharing a category.
type CategorySummary struct {
	Category      string  `json:"category"`
	ProductCount  int64   `json:"product_count"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}
