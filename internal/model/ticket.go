package model

import "time"

// Ticket 票券模型：票號在池初始化時指定，之後不增不減
type Ticket struct {
	Number int        `json:"number" db:"number"`
	Sold   bool       `json:"sold" db:"sold"`
	Buyer  *string    `json:"buyer,omitempty" db:"buyer"`
	SoldAt *time.Time `json:"soldAt,omitempty" db:"sold_at"`
}

// Available 檢查票券是否可購買
func (t *Ticket) Available() bool {
	return !t.Sold
}

// MarkSold 標記為已售出，買家與售出時間同時寫入
func (t *Ticket) MarkSold(buyer string, at time.Time) {
	t.Sold = true
	t.Buyer = &buyer
	t.SoldAt = &at
}

// Release 恢復為可售狀態，清除買家與售出時間
func (t *Ticket) Release() {
	t.Sold = false
	t.Buyer = nil
	t.SoldAt = nil
}

// TicketFilter 目錄查詢的狀態過濾
type TicketFilter string

const (
	FilterAll       TicketFilter = "all"
	FilterSold      TicketFilter = "sold"
	FilterAvailable TicketFilter = "available"
)

// IsValid 驗證過濾條件是否有效
func (f TicketFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterSold, FilterAvailable:
		return true
	}
	return false
}

// Matches 檢查票券是否符合過濾條件
func (f TicketFilter) Matches(t *Ticket) bool {
	switch f {
	case FilterSold:
		return t.Sold
	case FilterAvailable:
		return !t.Sold
	default:
		return true
	}
}

// Stats 票池統計。Total 恆等於 Sold + Available。
type Stats struct {
	Total     int     `json:"total"`
	Sold      int     `json:"sold"`
	Available int     `json:"available"`
	Revenue   float64 `json:"revenue"`
}
