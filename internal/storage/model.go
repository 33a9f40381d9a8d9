// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的快照格式（JSON）。
// 此層僅描述資料結構，不涉入商業邏輯；還原時的規則驗證由 bank 層負責。
// 快照屬盡力而為 (best effort)，不提供交易等級的耐久性保證。
package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion 為目前快照結構版本；載入時版本不符視為錯誤。
const SchemaVersion = 2

// Meta 為快照的中繼資料：儲存方式、版本、建立時間與說明。
type Meta struct {
	Storage   string    `json:"storage"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// BankMeta 保存銀行本身的識別資訊。
type BankMeta struct {
	Name string `json:"name"`
	IFSC string `json:"ifsc"`
}

// PersistRecord 為一筆帳本紀錄的序列化格式。
type PersistRecord struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CounterID    string          `json:"counter_account,omitempty"`
	Time         time.Time       `json:"time"`
}

// PersistAccount 為帳戶在儲存層的序列化格式（含變體欄位）。
type PersistAccount struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	Kind           string          `json:"kind"`
	Active         bool            `json:"active"`
	Balance        decimal.Decimal `json:"balance"`
	OpenDate       time.Time       `json:"open_date"`
	WithdrawnToday decimal.Decimal `json:"withdrawn_today"`
	LastWithdrawal time.Time       `json:"last_withdrawal"`

	// 儲蓄帳戶
	MonthlyTransactions int `json:"monthly_transactions,omitempty"`
	// 活期帳戶
	OverdraftUsed decimal.Decimal `json:"overdraft_used"`

	Records []PersistRecord `json:"records"`
}

// Snapshot 為 Bank 狀態的完整快照。
// NextID 為帳號序號計數器目前值，還原後新帳號由 NextID+1 開始。
type Snapshot struct {
	Meta     Meta             `json:"_meta"`
	Bank     BankMeta         `json:"bank"`
	NextID   int64            `json:"next_id"`
	Accounts []PersistAccount `json:"accounts"`
}
