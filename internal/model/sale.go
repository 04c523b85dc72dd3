package model

import "time"

// PurchaseRequest 購買請求：買家指名一組票號，整批成交或整批失敗
type PurchaseRequest struct {
	Numbers []int  `json:"numbers" binding:"required"`
	Buyer   string `json:"buyer" binding:"required"`
}

// PurchaseTicketsRequest HTTP 購買請求，多帶共享密碼
type PurchaseTicketsRequest struct {
	PurchaseRequest
	Password string `json:"password" binding:"required"`
}

// PurchaseReceipt 購買成功的回執，Numbers 為本次實際售出的票號
type PurchaseReceipt struct {
	Numbers []int     `json:"updatedNumbers"`
	Buyer   string    `json:"buyer"`
	Total   float64   `json:"total"`
	SoldAt  time.Time `json:"soldAt"`
}

// SaleEvent 售出事件，購買成功後發佈到銷售流水佇列
type SaleEvent struct {
	SaleID  string    `json:"sale_id"`
	Numbers []int     `json:"numbers"`
	Buyer   string    `json:"buyer"`
	Total   float64   `json:"total"`
	SoldAt  time.Time `json:"sold_at"`
}

// SaleRecord 流水落地後的紀錄
type SaleRecord struct {
	SaleID     string    `json:"sale_id" db:"sale_id"`
	Numbers    []int     `json:"numbers" db:"numbers"`
	Buyer      string    `json:"buyer" db:"buyer"`
	Total      float64   `json:"total" db:"total"`
	SoldAt     time.Time `json:"sold_at" db:"sold_at"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}
