// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤代表「操作中止且未改變任何狀態」，會由上層 HTTP handler 轉換成適當的 HTTP 狀態碼。
// 不適用的操作（帳戶停用、月費不足扣除等）不屬於錯誤，改以 Report 回報，見 report.go。

package bank

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound 代表帳戶不存在。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrNotFound = errors.New("account not found")

	// ErrInvalidAmount 代表金額非法（<= 0）。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrInvalidAmount = errors.New("amount must be > 0")

	// ErrInsufficientBalance 代表提款或轉出後將低於最低餘額。
	// 具體數值見 InsufficientBalanceError。對應 409 Conflict。
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDailyLimitExceeded 代表超過當日提款上限。
	// 具體數值見 DailyLimitExceededError。對應 409 Conflict。
	ErrDailyLimitExceeded = errors.New("daily withdrawal limit exceeded")

	// ErrSameAccount 代表轉帳來源與目標帳戶相同。
	ErrSameAccount = errors.New("from and to are same")

	// ErrInvalidKind 代表開戶時指定了未知的帳戶種類。
	ErrInvalidKind = errors.New("invalid account kind")

	// ErrUnsupported 代表該帳戶種類不提供此操作（例如儲蓄帳戶使用透支）。
	// 對應 422 Unprocessable Entity。
	ErrUnsupported = errors.New("operation not supported for this account kind")
)

// InsufficientBalanceError 攜帶目前餘額、最低餘額與目前最多可提金額。
type InsufficientBalanceError struct {
	Balance       decimal.Decimal `json:"balance"`
	MinBalance    decimal.Decimal `json:"min_balance"`
	MaxWithdrawal decimal.Decimal `json:"max_withdrawal"`
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: balance=%s min_balance=%s max_withdrawal=%s",
		e.Balance.StringFixed(2), e.MinBalance.StringFixed(2), e.MaxWithdrawal.StringFixed(2))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// DailyLimitExceededError 攜帶當日上限、今日已提金額與今日剩餘額度。
type DailyLimitExceededError struct {
	Limit     decimal.Decimal `json:"daily_limit"`
	Withdrawn decimal.Decimal `json:"withdrawn_today"`
	Remaining decimal.Decimal `json:"remaining_today"`
}

func (e *DailyLimitExceededError) Error() string {
	return fmt.Sprintf("daily withdrawal limit exceeded: limit=%s withdrawn_today=%s remaining_today=%s",
		e.Limit.StringFixed(2), e.Withdrawn.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *DailyLimitExceededError) Unwrap() error { return ErrDailyLimitExceeded }
