package dto

// AdjustStockRequest corrects a product's stock level.
type AdjustStockRequest struct {
	QtyChange float64 `json:"qtyChange" binding:"required"`
	Reason    string  `json:"reason" binding:"required"`
}
