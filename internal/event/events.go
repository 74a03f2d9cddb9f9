package event

const (
	TopicProductAdded      = "inventory.product.added"
	TopicProductDeleted    = "inventory.product.deleted"
	TopicInventoryImported = "inventory.imported"
)

type ProductAddedEvent struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
}

type ProductDeletedEvent struct {
	ProductID int64 `json:"product_id"`
}

type InventoryImportedEvent struct {
	BatchID string   `json:"batch_id"`
	Files   []string `json:"files"`
	Rows    int64    `json:"rows"`
}
