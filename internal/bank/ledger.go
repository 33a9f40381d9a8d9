// internal/bank/ledger.go
//
// Ledger 為單一帳戶專屬、只可追加 (append-only) 的交易序列。
// 插入順序即時間順序；時間戳保證單調不遞減（允許相同）。
// Ledger 本身不加鎖，由所屬 Account 的互斥鎖保護。

package bank

import "time"

// Ledger holds the ordered transaction history of one account.
type Ledger struct {
	records []Transaction
}

// stamp 回傳可用於下一筆紀錄的時間：若時鐘倒退，沿用最後一筆的時間，
// 確保帳本時間戳不會遞減。
func (l *Ledger) stamp(now time.Time) time.Time {
	if n := len(l.records); n > 0 {
		if last := l.records[n-1].Time; now.Before(last) {
			return last
		}
	}
	return now
}

// append 追加一筆紀錄；已存在的紀錄永不修改或刪除。
func (l *Ledger) append(t Transaction) Transaction {
	t.Time = l.stamp(t.Time)
	l.records = append(l.records, t)
	return t
}

// Len 回傳紀錄筆數。
func (l *Ledger) Len() int { return len(l.records) }

// All 回傳全部紀錄的拷貝。
func (l *Ledger) All() []Transaction {
	out := make([]Transaction, len(l.records))
	copy(out, l.records)
	return out
}

// Statement 依時間順序回傳時間戳落在 [from, to]（含端點）的紀錄。
// 查無資料回傳空切片，不視為錯誤。
func (l *Ledger) Statement(from, to time.Time) []Transaction {
	out := []Transaction{}
	for _, t := range l.records {
		if !t.Time.Before(from) && !t.Time.After(to) {
			out = append(out, t)
		}
	}
	return out
}

// Recent 回傳最後 min(n, size) 筆紀錄，依時間順序。
func (l *Ledger) Recent(n int) []Transaction {
	if n <= 0 {
		return []Transaction{}
	}
	start := len(l.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]Transaction, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}
