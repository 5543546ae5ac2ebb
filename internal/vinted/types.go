package vinted

import "encoding/json"

// CatalogItem is a single item from the catalog search response.
type CatalogItem struct {
	ID         json.Number     `json:"id"`
	Title      string          `json:"title"`
	Price      json.RawMessage `json:"price"`    // object or legacy string
	Currency   string          `json:"currency"` // legacy
	BrandTitle string          `json:"brand_title"`
	SizeTitle  string          `json:"size_title"`
	Status     string          `json:"status"`
	URL        string          `json:"url"`
	Path       string          `json:"path"`
	Photo      *CatalogPhoto   `json:"photo,omitempty"`
	User       *CatalogUser    `json:"user,omitempty"`
}

// CatalogPrice is the structured price of newer API responses.
type CatalogPrice struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// CatalogPhoto holds the primary item photo.
type CatalogPhoto struct {
	URL        string             `json:"url"`
	Thumbnails []CatalogThumbnail `json:"thumbnails,omitempty"`
}

// CatalogThumbnail is one rendition of a photo.
type CatalogThumbnail struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// CatalogUser is the seller summary embedded in each item.
type CatalogUser struct {
	ID                 json.Number `json:"id"`
	Login              string      `json:"login"`
	FeedbackReputation *float64    `json:"feedback_reputation,omitempty"` // 0..1
	FeedbackCount      *int        `json:"feedback_count,omitempty"`
	GivenItemCount     int         `json:"given_item_count"`
}

// CatalogPagination describes the returned page.
type CatalogPagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalEntries int `json:"total_entries"`
	PerPage      int `json:"per_page"`
}

type catalogResponse struct {
	Items      []CatalogItem      `json:"items"`
	Pagination *CatalogPagination `json:"pagination,omitempty"`
}
