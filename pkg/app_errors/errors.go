package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownTicket    = errors.New("unknown ticket")
	ErrAlreadySold      = errors.New("ticket already sold")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
)

// ValidationError 請求格式錯誤：空集合、買家名稱空白、票號非正數。
// 驗證失敗不會碰到 store。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// UnknownTicketError 票池中不存在的票號，Numbers 為全部缺少的票號（遞增）。
type UnknownTicketError struct {
	Numbers []int
}

func (e *UnknownTicketError) Error() string {
	return fmt.Sprintf("unknown ticket numbers: %v", e.Numbers)
}

func (e *UnknownTicketError) Unwrap() error { return ErrUnknownTicket }

// AlreadySoldError 請求中已售出的票號，Numbers 為全部衝突的票號（遞增）。
// 回傳此錯誤時整筆請求都未售出，包含沒有衝突的票號。
type AlreadySoldError struct {
	Numbers []int
}

func (e *AlreadySoldError) Error() string {
	return fmt.Sprintf("tickets already sold: %v", e.Numbers)
}

func (e *AlreadySoldError) Unwrap() error { return ErrAlreadySold }

// StoreUnavailable 包裝 store 的傳輸層錯誤（timeout、連線失敗）。
// 呼叫端可以整筆重試：失敗的請求不會留下部分狀態。
func StoreUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
