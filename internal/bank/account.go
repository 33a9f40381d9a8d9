// internal/bank/account.go
//
// 本檔定義 Account（儲蓄 / 活期兩種變體共用的基礎行為）：
// 存款、提款（含當日限額與最低餘額檢查）、轉帳與帳本查詢。
// 不含任何 HTTP 或儲存細節。

package bank

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MinBalance 為一般提款與轉出後必須保留的最低餘額，亦為開戶最低存款。
var MinBalance = decimal.NewFromInt(1000)

// Kind 為帳戶種類標籤。
type Kind string

const (
	KindSavings Kind = "SAVINGS"
	KindCurrent Kind = "CURRENT"
)

// ParseKind 接受名稱（不分大小寫）或選單編號 "1" / "2"。
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SAVINGS", "1":
		return KindSavings, nil
	case "CURRENT", "2":
		return KindCurrent, nil
	}
	return "", ErrInvalidKind
}

// variant 為帳戶變體的固定能力集合。
// 所有方法皆在持有 Account.mu 的情況下被呼叫。
type variant interface {
	kind() Kind
	dailyLimit() decimal.Decimal
	interest(balance decimal.Decimal) decimal.Decimal
	applyMonthlyCharges(a *Account) Report
	features() string
	// committed 於存款 / 提款提交後呼叫。
	committed(t TxType)
	// resetPeriod 結束本期計數；停用帳戶的月結也會呼叫。
	resetPeriod()
}

// Opening 為開戶輸入。
type Opening struct {
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Kind           Kind            `json:"kind"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// Account 為單一帳戶。所有公開方法自行取得 mu；
// 跨帳戶的轉帳依帳號順序同時鎖住雙方（見 lockPair）。
type Account struct {
	mu sync.Mutex

	id       string
	holder   string
	phone    string
	email    string
	openDate time.Time

	balance        decimal.Decimal
	withdrawnToday decimal.Decimal
	lastWithdrawal time.Time
	active         bool

	ledger  Ledger
	variant variant

	clock Clock
	log   *zap.Logger
}

func newVariant(k Kind) (variant, error) {
	switch k {
	case KindSavings:
		// 開戶存款計為本月第一筆交易
		return &savings{txCount: 1}, nil
	case KindCurrent:
		return &current{}, nil
	}
	return nil, ErrInvalidKind
}

func newAccount(id string, o Opening, v variant, clock Clock, log *zap.Logger) *Account {
	now := clock.Now()
	a := &Account{
		id:             id,
		holder:         o.Name,
		phone:          o.Phone,
		email:          o.Email,
		openDate:       dateOnly(now),
		balance:        o.InitialDeposit,
		withdrawnToday: decimal.Zero,
		lastWithdrawal: now,
		active:         true,
		variant:        v,
		clock:          clock,
		log:            log.With(zap.String("account_id", id)),
	}
	a.record(TxOpeningDeposit, o.InitialDeposit, "")
	return a
}

// record 以目前餘額追加一筆帳本紀錄。
func (a *Account) record(typ TxType, amount decimal.Decimal, counter string) Transaction {
	now := a.clock.Now()
	return a.ledger.append(Transaction{
		ID:           newTxID(now),
		AccountID:    a.id,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: a.balance,
		CounterID:    counter,
		Time:         now,
	})
}

func (a *Account) remainingToday(now time.Time) decimal.Decimal {
	limit := a.variant.dailyLimit()
	if !sameDay(now, a.lastWithdrawal) {
		return limit
	}
	return limit.Sub(a.withdrawnToday)
}

func (a *Account) report(st Status, msg string, recs ...Transaction) Report {
	return Report{
		Status:         st,
		AccountID:      a.id,
		Balance:        a.balance,
		RemainingToday: a.remainingToday(a.clock.Now()),
		Message:        msg,
		Records:        recs,
	}
}

func (a *Account) inactive(op string) Report {
	a.log.Warn("account inactive, operation ignored", zap.String("op", op))
	return a.report(StatusInactive, "account is inactive")
}

// ID 回傳帳號。
func (a *Account) ID() string { return a.id }

// Kind 回傳帳戶種類。
func (a *Account) Kind() Kind { return a.variant.kind() }

// Active 回報帳戶是否啟用。
func (a *Account) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *Account) setActive(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = v
}

// Balance 即 checkBalance；停用帳戶仍可查詢。
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Deposit 存款：金額需 > 0；帳戶停用時不變更狀態並回報 StatusInactive。
func (a *Account) Deposit(amount decimal.Decimal) (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deposit(amount)
}

func (a *Account) deposit(amount decimal.Decimal) (Report, error) {
	if !amount.IsPositive() {
		return Report{}, ErrInvalidAmount
	}
	if !a.active {
		return a.inactive("deposit"), nil
	}
	a.balance = a.balance.Add(amount)
	rec := a.record(TxDeposit, amount, "")
	a.variant.committed(TxDeposit)
	return a.report(StatusOK, "", rec), nil
}

// Withdraw 提款。檢查順序固定：
// 金額 → 啟用狀態 → 跨日重置 → 當日限額 → 最低餘額 → 提交。
// 跨日重置一旦執行，即使之後的檢查失敗也不回復。
func (a *Account) Withdraw(amount decimal.Decimal) (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdraw(amount)
}

func (a *Account) withdraw(amount decimal.Decimal) (Report, error) {
	if !amount.IsPositive() {
		return Report{}, ErrInvalidAmount
	}
	if !a.active {
		return a.inactive("withdraw"), nil
	}

	now := a.clock.Now()
	if !sameDay(now, a.lastWithdrawal) {
		a.withdrawnToday = decimal.Zero
		a.lastWithdrawal = now
	}

	limit := a.variant.dailyLimit()
	if a.withdrawnToday.Add(amount).GreaterThan(limit) {
		return Report{}, &DailyLimitExceededError{
			Limit:     limit,
			Withdrawn: a.withdrawnToday,
			Remaining: limit.Sub(a.withdrawnToday),
		}
	}
	if a.balance.Sub(amount).LessThan(MinBalance) {
		return Report{}, &InsufficientBalanceError{
			Balance:       a.balance,
			MinBalance:    MinBalance,
			MaxWithdrawal: a.balance.Sub(MinBalance),
		}
	}

	a.balance = a.balance.Sub(amount)
	a.withdrawnToday = a.withdrawnToday.Add(amount)
	rec := a.record(TxWithdrawal, amount, "")
	a.variant.committed(TxWithdrawal)
	return a.report(StatusOK, "", rec), nil
}

// Transfer 將 amount 由 a 轉至 target：先提款、再對目標存款，
// 並非兩階段提交。雙方在整個過程中依帳號順序加鎖。
// 成功時來源帳本多一筆 TRANSFER_OUT，目標帳本多一筆 TRANSFER_IN，
// 皆排在底層提款 / 存款紀錄之後。
func (a *Account) Transfer(target *Account, amount decimal.Decimal) (Report, error) {
	if !amount.IsPositive() {
		return Report{}, ErrInvalidAmount
	}
	if target == nil {
		return Report{}, ErrNotFound
	}
	if target == a {
		return Report{}, ErrSameAccount
	}
	unlock := lockPair(a, target)
	defer unlock()
	return a.transfer(target, amount, (*Account).deposit)
}

// transfer 需在雙方皆已加鎖時呼叫。credit 為目標入帳函式，正常情況即 deposit。
func (a *Account) transfer(target *Account, amount decimal.Decimal, credit func(*Account, decimal.Decimal) (Report, error)) (Report, error) {
	if !amount.IsPositive() {
		return Report{}, ErrInvalidAmount
	}
	if !target.active {
		a.log.Warn("transfer target inactive", zap.String("target_id", target.id))
		return a.report(StatusInactive, "target account is inactive"), nil
	}

	w, err := a.withdraw(amount)
	if err != nil || !w.Applied() {
		return w, err
	}

	d, err := credit(target, amount)
	if err != nil {
		// 只退回餘額：不寫沖銷紀錄，也不扣回 withdrawnToday。
		a.balance = a.balance.Add(amount)
		a.log.Warn("transfer deposit failed, amount reverted",
			zap.String("target_id", target.id),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return a.report(StatusReverted, "transfer failed, amount reverted: "+err.Error(), w.Records...), nil
	}

	out := a.record(TxTransferOut, amount, target.id)
	in := target.record(TxTransferIn, amount, a.id)

	recs := make([]Transaction, 0, len(w.Records)+len(d.Records)+2)
	recs = append(recs, w.Records...)
	recs = append(recs, d.Records...)
	recs = append(recs, out, in)
	return a.report(StatusOK, "", recs...), nil
}

// lockPair 依帳號遞增順序鎖住兩個帳戶，避免交叉轉帳死結。
// 帳號為固定寬度字串，字典序即數值順序。
func lockPair(a, b *Account) (unlock func()) {
	first, second := a, b
	if b.id < a.id {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

// CalculateInterest 回傳以目前餘額計算的本月利息；活期帳戶恆為 0。
func (a *Account) CalculateInterest() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.variant.interest(a.balance)
}

// CreditInterest 將本月利息入帳（僅儲蓄帳戶）。
// 本層不限制呼叫頻率，入帳週期由外部排程決定。
func (a *Account) CreditInterest() (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.variant.(*savings); !ok {
		return Report{}, ErrUnsupported
	}
	return a.creditInterest(), nil
}

func (a *Account) creditInterest() Report {
	if !a.active {
		return a.inactive("credit_interest")
	}
	interest := a.variant.interest(a.balance)
	a.balance = a.balance.Add(interest)
	rec := a.record(TxInterestCredit, interest, "")
	return a.report(StatusOK, "", rec)
}

// ApplyMonthlyCharges 依帳戶種類收取月費（儲蓄：超額交易費；活期：維護費）。
// 停用帳戶不扣款，但本期計數仍歸零。
func (a *Account) ApplyMonthlyCharges() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.active {
		a.variant.resetPeriod()
		return a.inactive("monthly_charges")
	}
	return a.variant.applyMonthlyCharges(a)
}

// DescribeFeatures 回傳帳戶種類的功能說明。
func (a *Account) DescribeFeatures() string {
	return a.variant.features()
}

// Statement 依時間順序回傳 [from, to] 內的帳本紀錄；停用帳戶仍可查詢。
func (a *Account) Statement(from, to time.Time) []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Statement(from, to)
}

// Recent 回傳最近 n 筆紀錄。
func (a *Account) Recent(n int) []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Recent(n)
}

// Transactions 回傳完整帳本拷貝。
func (a *Account) Transactions() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.All()
}

// Info is a read-only view of an account.
type Info struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Phone               string           `json:"phone"`
	Email               string           `json:"email"`
	Kind                Kind             `json:"kind"`
	Active              bool             `json:"active"`
	Balance             decimal.Decimal  `json:"balance"`
	OpenDate            string           `json:"open_date"`
	DailyLimit          decimal.Decimal  `json:"daily_limit"`
	WithdrawnToday      decimal.Decimal  `json:"withdrawn_today"`
	Transactions        int              `json:"transactions"`
	MonthlyTransactions *int             `json:"monthly_transactions,omitempty"`
	OverdraftUsed       *decimal.Decimal `json:"overdraft_used,omitempty"`
	OverdraftLimit      *decimal.Decimal `json:"overdraft_limit,omitempty"`
	Features            string           `json:"features"`
}

// Info 回傳帳戶資訊快照。
func (a *Account) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	limit := a.variant.dailyLimit()
	info := Info{
		ID:             a.id,
		Name:           a.holder,
		Phone:          a.phone,
		Email:          a.email,
		Kind:           a.variant.kind(),
		Active:         a.active,
		Balance:        a.balance,
		OpenDate:       a.openDate.Format("2006-01-02"),
		DailyLimit:     limit,
		WithdrawnToday: limit.Sub(a.remainingToday(a.clock.Now())),
		Transactions:   a.ledger.Len(),
		Features:       a.variant.features(),
	}
	switch v := a.variant.(type) {
	case *savings:
		n := v.txCount
		info.MonthlyTransactions = &n
	case *current:
		used, lim := v.used, OverdraftLimit
		info.OverdraftUsed, info.OverdraftLimit = &used, &lim
	}
	return info
}
