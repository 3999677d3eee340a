package dto

type ItemCreateRequest struct {
	Name      string `json:"name" validate:"required"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	ReceiptID string `json:"receiptId,omitempty"`
}

type ItemUpdateRequest struct {
	Name      *string `json:"name,omitempty"`
	Price     *string `json:"price,omitempty"`
	Quantity  *string `json:"quantity,omitempty"`
	ReceiptID *string `json:"receiptId,omitempty"`
}

type ItemResponse struct {
	ID        string `json:"id"`
	ReceiptID string `json:"receiptId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
}

type ReceiptCreateRequest struct {
	Date      string              `json:"date" validate:"required"`
	Time      string              `json:"time" validate:"required"`
	Total     string              `json:"total" validate:"required"`
	ImageData *string             `json:"imageData,omitempty"`
	Store     *string             `json:"store,omitempty"`
	Address   *string             `json:"address,omitempty"`
	Items     []ItemCreateRequest `json:"items" validate:"dive"`
}

type ReceiptUpdateRequest struct {
	Date      *string `json:"date,omitempty"`
	Time      *string `json:"time,omitempty"`
	Total     *string `json:"total,omitempty"`
	ImageData *string `json:"imageData,omitempty"`
	Store     *string `json:"store,omitempty"`
	Address   *string `json:"address,omitempty"`
}

type ReceiptResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	Total     string         `json:"total"`
	ImageData *string        `json:"imageData,omitempty"`
	Store     *string        `json:"store,omitempty"`
	Address   *string        `json:"address,omitempty"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	Items     []ItemResponse `json:"items"`
}

// ReceiptDraft is an unsaved receipt extracted from an image. Its shape
// matches ReceiptCreateRequest so clients can post it back after review.
type ReceiptDraft struct {
	Items   []ItemCreateRequest `json:"items"`
	Total   string              `json:"total"`
	Date    string              `json:"date"`
	Time    string              `json:"time"`
	Store   string              `json:"store,omitempty"`
	Address string              `json:"address,omitempty"`
}

type AnalyzeReceiptResponse struct {
	Success       bool         `json:"success"`
	Status        string       `json:"status"`
	Data          ReceiptDraft `json:"data"`
	ExtractedText string       `json:"extractedText,omitempty"`
}
