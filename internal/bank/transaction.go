// internal/bank/transaction.go
//
// 本檔定義交易紀錄 (Transaction Record)：帳本中不可變的一筆事實。
// 每一次會影響餘額的操作在提交 (commit) 時恰好產生一筆紀錄，之後永不修改。

package bank

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// TxType 為交易種類。
type TxType string

const (
	TxOpeningDeposit     TxType = "OPENING_DEPOSIT"
	TxDeposit            TxType = "DEPOSIT"
	TxWithdrawal         TxType = "WITHDRAWAL"
	TxTransferOut        TxType = "TRANSFER_OUT"
	TxTransferIn         TxType = "TRANSFER_IN"
	TxInterestCredit     TxType = "INTEREST_CREDIT"
	TxTransactionCharges TxType = "TRANSACTION_CHARGES"
	TxMonthlyMaintenance TxType = "MONTHLY_MAINTENANCE"
	TxOverdraftUsed      TxType = "OVERDRAFT_USED"
	TxOverdraftRepay     TxType = "OVERDRAFT_REPAY"
)

// Transaction represents one immutable ledger entry.
type Transaction struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Type         TxType          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CounterID    string          `json:"counter_account,omitempty"`
	Time         time.Time       `json:"time"`
}

// Label 回傳顯示用的種類標籤；轉帳會附上對方帳號，
// 例如 TRANSFER_OUT_TO_ACC00010002。
func (t Transaction) Label() string {
	switch t.Type {
	case TxTransferOut:
		return string(t.Type) + "_TO_" + t.CounterID
	case TxTransferIn:
		return string(t.Type) + "_FROM_" + t.CounterID
	}
	return string(t.Type)
}

const stampLayout = "02-01-2006 15:04:05"

// String 以單行格式輸出：編號 | 種類 | 金額 | 交易後餘額 | 時間。
func (t Transaction) String() string {
	return fmt.Sprintf("%-30s | %-28s | %12s | Balance: %12s | %s",
		t.ID, t.Label(), t.Amount.StringFixed(2), t.BalanceAfter.StringFixed(2), t.Time.Format(stampLayout))
}

// txIDs 產生全程序唯一的交易編號。
// ulid.Monotonic 並非並發安全，因此以互斥鎖序列化。
var txIDs = struct {
	sync.Mutex
	entropy *ulid.MonotonicEntropy
}{entropy: ulid.Monotonic(rand.Reader, 0)}

func newTxID(at time.Time) string {
	txIDs.Lock()
	defer txIDs.Unlock()
	return "TXN_" + ulid.MustNew(ulid.Timestamp(at), txIDs.entropy).String()
}
