// internal/bank/bank.go

// Package bank 定義核心商業邏輯：開戶、存提款、轉帳、計息、月費、透支與帳本查詢。
// Bank 為帳戶目錄 (Directory)：帳號 → *Account 的對照表，負責解析轉帳對象。
// 帳號配發以原子遞增計數器完成；帳戶狀態由各 Account 自己的互斥鎖保護，
// 轉帳依帳號順序鎖住雙方。金額一律使用 decimal.Decimal。
package bank

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"bankledger/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const firstAccountNumber = 10001

// Bank 為帳戶目錄與銀行識別資訊。
// - mu：僅保護 accts 對照表本身，不保護帳戶內容。
// - seq：最後配發的帳號序號，以 atomic 遞增。
type Bank struct {
	mu    sync.RWMutex
	seq   int64
	accts map[string]*Account

	name string
	ifsc string

	clock Clock
	log   *zap.Logger
}

// Option 設定 Bank 的可選參數。
type Option func(*Bank)

// WithClock 注入時鐘（測試用以模擬跨日）。
func WithClock(c Clock) Option { return func(b *Bank) { b.clock = c } }

// WithLogger 注入 zap logger；預設為 zap.NewNop()。
func WithLogger(l *zap.Logger) Option { return func(b *Bank) { b.log = l } }

// WithIdentity 設定銀行名稱與 IFSC 代碼。
func WithIdentity(name, ifsc string) Option {
	return func(b *Bank) { b.name, b.ifsc = name, ifsc }
}

// NewBank 建立空白銀行實例（僅就緒的 in-memory 狀態，無外部依賴）。
func NewBank(opts ...Option) *Bank {
	b := &Bank{
		seq:   firstAccountNumber - 1,
		accts: make(map[string]*Account),
		name:  "STATE BANK OF GO",
		ifsc:  "SBOG0001234",
		clock: systemClock{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// newID 回傳唯一遞增帳號，格式 ACC%08d。
func (b *Bank) newID() string {
	return fmt.Sprintf("ACC%08d", atomic.AddInt64(&b.seq, 1))
}

// Create 開戶。帳戶種類不明回傳 ErrInvalidKind；
// 初始存款低於 MinBalance 時不開戶，回報 StatusRejected（非錯誤）。
// 成功時開戶存款即為帳本第一筆紀錄。
func (b *Bank) Create(o Opening) (*Account, Report, error) {
	v, err := newVariant(o.Kind)
	if err != nil {
		return nil, Report{}, err
	}
	if o.InitialDeposit.LessThan(MinBalance) {
		b.log.Warn("initial deposit below minimum balance",
			zap.String("initial_deposit", o.InitialDeposit.String()),
			zap.String("min_balance", MinBalance.String()))
		return nil, Report{
			Status:  StatusRejected,
			Balance: o.InitialDeposit,
			Message: "initial deposit must be at least " + MinBalance.StringFixed(2),
		}, nil
	}

	a := newAccount(b.newID(), o, v, b.clock, b.log)
	rep := a.report(StatusOK, "account created", a.ledger.All()...)

	b.mu.Lock()
	b.accts[a.id] = a
	b.mu.Unlock()

	b.log.Info("account created",
		zap.String("account_id", a.id),
		zap.String("kind", string(o.Kind)),
		zap.String("initial_deposit", o.InitialDeposit.String()))
	return a, rep, nil
}

// Find 依帳號取得帳戶；不存在回傳 ErrNotFound。
func (b *Bank) Find(id string) (*Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.accts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// List 依帳號排序回傳所有帳戶。
func (b *Bank) List() []*Account {
	b.mu.RLock()
	out := make([]*Account, 0, len(b.accts))
	for _, a := range b.accts {
		out = append(out, a)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Deposit 依帳號存款。
func (b *Bank) Deposit(id string, amt decimal.Decimal) (Report, error) {
	a, err := b.Find(id)
	if err != nil {
		return Report{}, err
	}
	return a.Deposit(amt)
}

// Withdraw 依帳號提款。
func (b *Bank) Withdraw(id string, amt decimal.Decimal) (Report, error) {
	a, err := b.Find(id)
	if err != nil {
		return Report{}, err
	}
	return a.Withdraw(amt)
}

// Transfer 解析雙方帳號後執行轉帳；任一方不存在時在任何變更前中止。
func (b *Bank) Transfer(fromID, toID string, amt decimal.Decimal) (Report, error) {
	if !amt.IsPositive() {
		return Report{}, ErrInvalidAmount
	}
	if fromID == toID {
		return Report{}, ErrSameAccount
	}
	from, err := b.Find(fromID)
	if err != nil {
		return Report{}, fmt.Errorf("source %s: %w", fromID, err)
	}
	to, err := b.Find(toID)
	if err != nil {
		return Report{}, fmt.Errorf("target %s: %w", toID, err)
	}
	rep, err := from.Transfer(to, amt)
	if err == nil && rep.Applied() {
		b.log.Info("transfer completed",
			zap.String("from", fromID),
			zap.String("to", toID),
			zap.String("amount", amt.String()))
	}
	return rep, err
}

// Statement 回傳帳戶在 [from, to] 之間的帳本紀錄。
func (b *Bank) Statement(id string, from, to time.Time) ([]Transaction, error) {
	a, err := b.Find(id)
	if err != nil {
		return nil, err
	}
	return a.Statement(from, to), nil
}

// Recent 回傳帳戶最近 n 筆紀錄（迷你對帳單）。
func (b *Bank) Recent(id string, n int) ([]Transaction, error) {
	a, err := b.Find(id)
	if err != nil {
		return nil, err
	}
	return a.Recent(n), nil
}

// SetActive 為管理性操作：停用或重新啟用帳戶。帳戶不會被刪除。
func (b *Bank) SetActive(id string, active bool) error {
	a, err := b.Find(id)
	if err != nil {
		return err
	}
	a.setActive(active)
	b.log.Info("account status changed", zap.String("account_id", id), zap.Bool("active", active))
	return nil
}

// Now 回傳銀行時鐘的目前時間。
func (b *Bank) Now() time.Time { return b.clock.Now() }

func (b *Bank) identity() (name, ifsc string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name, b.ifsc
}

// Summary is the bank-level view.
type Summary struct {
	Name           string `json:"name"`
	IFSC           string `json:"ifsc"`
	TotalAccounts  int    `json:"total_accounts"`
	ActiveAccounts int    `json:"active_accounts"`
}

// Info 回傳銀行名稱、IFSC 與帳戶數統計。
func (b *Bank) Info() Summary {
	name, ifsc := b.identity()
	all := b.List()
	info := Summary{Name: name, IFSC: ifsc, TotalAccounts: len(all)}
	for _, a := range all {
		if a.Active() {
			info.ActiveAccounts++
		}
	}
	return info
}

// MonthEnd 對每個帳戶執行一次月結：先收月費，儲蓄帳戶再入帳利息。
// 呼叫時機由外部排程決定，本方法不做重複執行的防護。
func (b *Bank) MonthEnd() []Report {
	accts := b.List()
	var out []Report
	for _, a := range accts {
		out = append(out, a.ApplyMonthlyCharges())
		if a.Kind() == KindSavings {
			rep, err := a.CreditInterest()
			if err != nil {
				b.log.Error("credit interest failed", zap.String("account_id", a.id), zap.Error(err))
				continue
			}
			out = append(out, rep)
		}
	}
	b.log.Info("month-end run completed", zap.Int("accounts", len(accts)), zap.Int("reports", len(out)))
	return out
}

// Snapshot 匯出銀行狀態到可持久化的 storage.Snapshot。
// 各帳戶分別在自己的鎖內匯出；不保證跨帳戶的一致切面。
func (b *Bank) Snapshot() storage.Snapshot {
	name, ifsc := b.identity()
	s := storage.Snapshot{
		Meta:   storage.Meta{Note: "best-effort snapshot; not a durable store"},
		Bank:   storage.BankMeta{Name: name, IFSC: ifsc},
		NextID: atomic.LoadInt64(&b.seq),
	}
	for _, a := range b.List() {
		s.Accounts = append(s.Accounts, a.persist())
	}
	return s
}

// Restore 由快照重建帳號計數器與帳戶表；遇到未知帳戶種類時回傳錯誤且不改變現有狀態。
func (b *Bank) Restore(s storage.Snapshot) error {
	accts := make(map[string]*Account, len(s.Accounts))
	for _, pa := range s.Accounts {
		a, err := restoreAccount(pa, b.clock, b.log)
		if err != nil {
			return fmt.Errorf("restore %s: %w", pa.ID, err)
		}
		accts[a.id] = a
	}

	seq := s.NextID
	if seq < firstAccountNumber-1 {
		seq = firstAccountNumber - 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	atomic.StoreInt64(&b.seq, seq)
	b.accts = accts
	// 銀行名稱與 IFSC 以目前設定為準，快照中的 BankMeta 僅供參考
	if s.Bank.Name != "" && s.Bank.Name != b.name {
		b.log.Info("snapshot bank identity differs from config, keeping config",
			zap.String("snapshot", s.Bank.Name), zap.String("config", b.name))
	}
	return nil
}

func (a *Account) persist() storage.PersistAccount {
	a.mu.Lock()
	defer a.mu.Unlock()
	pa := storage.PersistAccount{
		ID:             a.id,
		Name:           a.holder,
		Phone:          a.phone,
		Email:          a.email,
		Kind:           string(a.variant.kind()),
		Active:         a.active,
		Balance:        a.balance,
		OpenDate:       a.openDate,
		WithdrawnToday: a.withdrawnToday,
		LastWithdrawal: a.lastWithdrawal,
	}
	switch v := a.variant.(type) {
	case *savings:
		pa.MonthlyTransactions = v.txCount
	case *current:
		pa.OverdraftUsed = v.used
	}
	for _, t := range a.ledger.records {
		pa.Records = append(pa.Records, storage.PersistRecord{
			ID:           t.ID,
			Type:         string(t.Type),
			Amount:       t.Amount,
			BalanceAfter: t.BalanceAfter,
			CounterID:    t.CounterID,
			Time:         t.Time,
		})
	}
	return pa
}

func restoreAccount(pa storage.PersistAccount, clock Clock, log *zap.Logger) (*Account, error) {
	v, err := newVariant(Kind(pa.Kind))
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case *savings:
		v.txCount = pa.MonthlyTransactions
	case *current:
		v.used = pa.OverdraftUsed
	}
	a := &Account{
		id:             pa.ID,
		holder:         pa.Name,
		phone:          pa.Phone,
		email:          pa.Email,
		openDate:       pa.OpenDate,
		balance:        pa.Balance,
		withdrawnToday: pa.WithdrawnToday,
		lastWithdrawal: pa.LastWithdrawal,
		active:         pa.Active,
		variant:        v,
		clock:          clock,
		log:            log.With(zap.String("account_id", pa.ID)),
	}
	for _, r := range pa.Records {
		a.ledger.records = append(a.ledger.records, Transaction{
			ID:           r.ID,
			AccountID:    pa.ID,
			Type:         TxType(r.Type),
			Amount:       r.Amount,
			BalanceAfter: r.BalanceAfter,
			CounterID:    r.CounterID,
			Time:         r.Time,
		})
	}
	return a, nil
}
