// internal/bank/report.go

package bank

import "github.com/shopspring/decimal"

// Status 為操作結果的「軟性」狀態。
// 只有 StatusOK 代表狀態已變更；其餘狀態皆為未套用但非錯誤的回報。
type Status string

const (
	StatusOK       Status = "ok"
	StatusInactive Status = "inactive" // 帳戶已停用，操作不生效
	StatusNone     Status = "none"     // 無應收費用
	StatusSkipped  Status = "skipped"  // 餘額不足以扣除費用，略過
	StatusRejected Status = "rejected" // 透支額度或還款金額不符，拒絕
	StatusReverted Status = "reverted" // 轉帳入帳失敗，來源帳戶已退回
)

// Report 為每個變更型操作的回傳摘要。
// Records 為本次操作新增的帳本紀錄（轉帳時包含雙方），供事件發佈使用。
type Report struct {
	Status         Status          `json:"status"`
	AccountID      string          `json:"account_id"`
	Balance        decimal.Decimal `json:"balance"`
	RemainingToday decimal.Decimal `json:"remaining_today"`
	Message        string          `json:"message,omitempty"`
	Records        []Transaction   `json:"records,omitempty"`
}

// Applied 回報此次操作是否真的改變了帳戶狀態。
func (r Report) Applied() bool { return r.Status == StatusOK }
