package dto

// PositionDTO assigns a position to one row.
type PositionDTO struct {
	ID       string `json:"id" validate:"required,uuid"`
	Position int    `json:"position" validate:"gte=0"`
}

// ReorderDTO is a batch of explicit positions.
type ReorderDTO struct {
	List []PositionDTO `json:"list" validate:"required,min=1,dive"`
}

// MoveDTO moves the item at index From to index To.
type MoveDTO struct {
	From *int `json:"from" validate:"required"`
	To   *int `json:"to" validate:"required"`
}

// NotReadyResponseDTO is returned when publishing is blocked by missing fields.
type NotReadyResponseDTO struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing"`
}
