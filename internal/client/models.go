package client

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Items   []int `json:"items"`
	TableID int   `json:"table_id"`
}
