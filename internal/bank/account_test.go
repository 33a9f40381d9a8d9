// internal/bank/account_test.go
//
// Account 層測試：存款、提款檢查順序、跨日重置、停用帳戶、轉帳帳本、
// 儲蓄計息與月費、活期維護費與透支。

package bank

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// TestDeposit 驗證存款後餘額正確且恰好新增一筆 DEPOSIT 紀錄。
func TestDeposit(t *testing.T) {
	b, _ := newTestBank(t)
	a := open(t, b, KindSavings, "5000")

	rep, err := a.Deposit(dec("250.75"))
	if err != nil || rep.Status != StatusOK {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
	assertDec(t, "balance", a.Balance(), "5250.75")
	txs := a.Transactions()
	if len(txs) != 2 {
		t.Fatalf("ledger len=%d want 2", len(txs))
	}
	last := txs[1]
	if last.Type != TxDeposit || last.AccountID != a.ID() {
		t.Fatalf("last=%+v", last)
	}
	assertDec(t, "amount", last.Amount, "250.75")
	assertDec(t, "balance_after", last.BalanceAfter, "5250.75")
	if len(rep.Records) != 1 || rep.Records[0].ID != last.ID {
		t.Fatalf("report records=%+v", rep.Records)
	}
}

// TestInvalidAmounts 驗證非正數金額在任何變更前被拒絕。
func TestInvalidAmounts(t *testing.T) {
	b, _ := newTestBank(t)
	a := open(t, b, KindSavings, "5000")
	c := open(t, b, KindCurrent, "5000")

	for _, amt := range []string{"0", "-1", "-0.01"} {
		if _, err := a.Deposit(dec(amt)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("deposit %s: want ErrInvalidAmount, got %v", amt, err)
		}
		if _, err := a.Withdraw(dec(amt)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("withdraw %s: want ErrInvalidAmount, got %v", amt, err)
		}
		if _, err := a.Transfer(c, dec(amt)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("transfer %s: want ErrInvalidAmount, got %v", amt, err)
		}
		if _, err := c.UseOverdraft(dec(amt)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("overdraft %s: want ErrInvalidAmount, got %v", amt, err)
		}
		if _, err := c.RepayOverdraft(dec(amt)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("repay %s: want ErrInvalidAmount, got %v", amt, err)
		}
	}
	assertDec(t, "balance", a.Balance(), "5000")
	if len(a.Transactions()) != 1 || len(c.Transactions()) != 1 {
		t.Fatalf("ledgers should be untouched")
	}
}

// TestWithdrawMinBalanceScenario 儲蓄帳戶 5000：提 3000 成功；再提 1500 將低於 1000 → 拒絕。
func TestWithdrawMinBalanceScenario(t *testing.T) {
	b, _ := newTestBank(t)
	a := open(t, b, KindSavings, "5000")

	rep, err := a.Withdraw(dec("3000"))
	if err != nil {
		t.Fatal(err)
	}
	assertDec(t, "balance", rep.Balance, "2000")
	assertDec(t, "remaining today", rep.RemainingToday, "47000")

	_, err = a.Withdraw(dec("1500"))
	var ib *InsufficientBalanceError
	if !errors.As(err, &ib) || !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want InsufficientBalanceError, got %v", err)
	}
	assertDec(t, "err.balance", ib.Balance, "2000")
	assertDec(t, "err.min", ib.MinBalance, "1000")
	assertDec(t, "err.max", ib.MaxWithdrawal, "1000")

	assertDec(t, "balance", a.Balance(), "2000")
	if got := len(a.Transactions()); got != 2 {
		t.Fatalf("ledger len=%d want 2", got)
	}
	// 失敗的提款不計入今日已提
	assertDec(t, "withdrawn today", a.Info().WithdrawnToday, "3000")
}

// TestDailyLimitCheckedBeforeBalance 兩項檢查皆失敗時，回報當日限額。
func TestDailyLimitCheckedBeforeBalance(t *testing.T) {
	b, _ := newTestBank(t)
	a := open(t, b, KindSavings, "1000")

	_, err := a.Withdraw(dec("60000"))
	var dl *DailyLimitExceededError
	if !errors.As(err, &dl) || !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("want DailyLimitExceededError, got %v", err)
	}
	assertDec(t, "limit", dl.Limit, "50000")
	assertDec(t, "withdrawn", dl.Withdrawn, "0")
	assertDec(t, "remaining", dl.Remaining, "50000")
}

// TestDailyLimitSufficientBalance 餘額足夠但超過當日限額仍被拒絕。
func TestDailyLimitSufficientBalance(t *testing.T) {
	b, _ := newTestBank(t)
	a := open(t, b, KindCurrent, "500000")

	if _, err := a.Withdraw(dec("150000")); err != nil {
		t.Fatal(err)
	}
	_, err := a.Withdraw(dec("60000"))
	var dl *DailyLimitExceededError
	if !errors.As(err, &dl) {
		t.Fatalf("want DailyLimitExceededError, got %v", err)
	}
	assertDec(t, "withdrawn", dl.Withdrawn, "150000")
	assertDec(t, "remaining", dl.Remaining, "50000")
	assertDec(t, "balance", a.Balance(), "350000")
}

// TestDayRollover 同日提款累計；跨日後先歸零再檢查新請求。
func TestDayRollover(t *testing.T) {
	b, clk := newTestBank(t)
	a := open(t, b, KindSavings, "200000")

	// ✅ 同日累計至上限
	if _, err := a.Withdraw(dec("30000")); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Withdraw(dec("20000")); err != nil {
		t.Fatal(err)
	}
	assertDec(t, "withdrawn today", a.Info().WithdrawnToday, "50000")
	if _, err := a.Withdraw(dec("1")); !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("want ErrDailyLimitExceeded, got %v", err)
	}

	// 隔日
	clk.Advance(24 * time.Hour)
	rep, err := a.Withdraw(dec("40000"))
	if err != nil {
		t.Fatalf("after rollover: %v", err)
	}
	assertDec(t, "remaining today", rep.RemainingToday, "10000")
	assertDec(t, "withdrawn today", a.Info().WithdrawnToday, "40000")
}

// TestRolloverPersistsOnFailure 跨日重置在後續檢查失敗時不會被回復。
func TestRolloverPersistsOnFailure(t *testing.T) {
	b, clk := newTestBank(t)
	a := open(t, b, KindSavings, "51000")
	if _, err := a.Withdraw(dec("50000")); err != nil {
		t.Fatal(err)
	}

	clk.Advance(25 * time.Hour)
	if _, err := a.Withdraw(dec("500")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.withdrawnToday.IsZero() {
		t.Fatalf("withdrawnToday=%s want 0", a.withdrawnToday)
	}
	if !sameDay(clk.Now(), a.lastWithdrawal) {
		t.Fatalf("lastWithdrawal=%v should be today", a.lastWithdrawal)
	}
}

// TestInactiveAccountNoop 停用帳戶的變更操作不生效且不回傳錯誤；查詢仍可用。
func TestInactiveAccountNoop(t *testing.T) {
	b, clk := newTestBank(t)
	s := open(t, b, KindSavings, "5000")
	c := open(t, b, KindCurrent, "5000")
	from := clk.Now()
	s.setActive(false)
	c.setActive(false)

	ops := map[string]func() (Report, error){
		"deposit":   func() (Report, error) { return s.Deposit(dec("10")) },
		"withdraw":  func() (Report, error) { return s.Withdraw(dec("10")) },
		"interest":  s.CreditInterest,
		"charges":   func() (Report, error) { return s.ApplyMonthlyCharges(), nil },
		"overdraft": func() (Report, error) { return c.UseOverdraft(dec("10")) },
		"repay":     func() (Report, error) { return c.RepayOverdraft(dec("10")) },
		"maint":     func() (Report, error) { return c.ApplyMonthlyCharges(), nil },
	}
	for name, op := range ops {
		rep, err := op()
		if err != nil || rep.Status != StatusInactive || rep.Applied() {
			t.Fatalf("%s: rep=%+v err=%v", name, rep, err)
		}
	}
	assertDec(t, "savings", s.Balance(), "5000")
	assertDec(t, "current", c.Balance(), "5000")
	// 月結不扣款，但本期計數仍歸零
	if got := *s.Info().MonthlyTransactions; got != 0 {
		t.Fatalf("monthly transactions=%d want 0", got)
	}
	if len(s.Statement(from, clk.Now())) != 1 || len(c.Recent(5)) != 1 {
		t.Fatalf("queries should still work on inactive accounts")
	}
	// 金額檢查先於啟用狀態
	if _, err := s.Withdraw(dec("0")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

// TestTransferRoundTrip 轉帳後雙方餘額與帳本紀錄。
func TestTransferRoundTrip(t *testing.T) {
	b, _ := newTestBank(t)
	src := open(t, b, KindSavings, "10000")
	dst := open(t, b, KindCurrent, "5000")

	rep, err := src.Transfer(dst, dec("3000"))
	if err != nil || !rep.Applied() {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
	assertDec(t, "src", src.Balance(), "7000")
	assertDec(t, "dst", dst.Balance(), "8000")

	st := src.Transactions()
	if len(st) != 3 || st[1].Type != TxWithdrawal || st[2].Type != TxTransferOut {
		t.Fatalf("src ledger=%+v", st)
	}
	if st[2].CounterID != dst.ID() || st[2].Label() != "TRANSFER_OUT_TO_"+dst.ID() {
		t.Fatalf("transfer-out=%+v", st[2])
	}
	assertDec(t, "transfer-out balance_after", st[2].BalanceAfter, "7000")

	dt := dst.Transactions()
	if len(dt) != 3 || dt[1].Type != TxDeposit || dt[2].Type != TxTransferIn || dt[2].CounterID != src.ID() {
		t.Fatalf("dst ledger=%+v", dt)
	}
	assertDec(t, "transfer-in balance_after", dt[2].BalanceAfter, "8000")

	if len(rep.Records) != 4 {
		t.Fatalf("report records=%d want 4", len(rep.Records))
	}
	// 提款計入來源當日額度
	assertDec(t, "remaining", rep.RemainingToday, "47000")
}

// TestTransferAbortsWithoutChange 提款階段失敗或目標停用時雙方皆不變。
func TestTransferAbortsWithoutChange(t *testing.T) {
	b, _ := newTestBank(t)
	src := open(t, b, KindSavings, "3000")
	dst := open(t, b, KindCurrent, "5000")

	if _, err := src.Transfer(dst, dec("2500")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	if _, err := src.Transfer(dst, dec("60000")); !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("want ErrDailyLimitExceeded, got %v", err)
	}
	// 金額檢查先於對象檢查，與 Bank.Transfer 一致
	if _, err := src.Transfer(src, dec("0")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	if _, err := src.Transfer(nil, dec("-1")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	if _, err := src.Transfer(src, dec("1")); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("want ErrSameAccount, got %v", err)
	}
	if _, err := src.Transfer(nil, dec("1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	dst.setActive(false)
	rep, err := src.Transfer(dst, dec("100"))
	if err != nil || rep.Status != StatusInactive {
		t.Fatalf("inactive target: rep=%+v err=%v", rep, err)
	}

	assertDec(t, "src", src.Balance(), "3000")
	assertDec(t, "dst", dst.Balance(), "5000")
	assertDec(t, "src withdrawn today", src.Info().WithdrawnToday, "0")
	if len(src.Transactions()) != 1 || len(dst.Transactions()) != 1 {
		t.Fatalf("ledgers should be untouched")
	}
}

// TestTransferRevertWithoutLedgerEntry 入帳失敗時只退回來源餘額：
// 不寫沖銷紀錄，也不扣回今日已提金額。
func TestTransferRevertWithoutLedgerEntry(t *testing.T) {
	b, _ := newTestBank(t)
	src := open(t, b, KindSavings, "10000")
	dst := open(t, b, KindCurrent, "5000")

	failing := func(*Account, decimal.Decimal) (Report, error) { return Report{}, ErrInvalidAmount }

	unlock := lockPair(src, dst)
	rep, err := src.transfer(dst, dec("4000"), failing)
	unlock()

	if err != nil || rep.Status != StatusReverted {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
	assertDec(t, "src", src.Balance(), "10000")
	assertDec(t, "dst", dst.Balance(), "5000")

	st := src.Transactions()
	if len(st) != 2 || st[1].Type != TxWithdrawal {
		t.Fatalf("src ledger=%+v", st)
	}
	assertDec(t, "withdrawn today", src.Info().WithdrawnToday, "4000")
	if len(dst.Transactions()) != 1 {
		t.Fatalf("dst ledger should be untouched")
	}
}

// TestSavingsInterest 月息 = 餘額 * 4.5 / 1200；活期帳戶不計息。
func TestSavingsInterest(t *testing.T) {
	b, _ := newTestBank(t)
	s := open(t, b, KindSavings, "12000")
	c := open(t, b, KindCurrent, "12000")

	assertDec(t, "interest", s.CalculateInterest(), "45")
	assertDec(t, "current interest", c.CalculateInterest(), "0")

	rep, err := s.CreditInterest()
	if err != nil || !rep.Applied() {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
	assertDec(t, "balance", s.Balance(), "12045")
	last := s.Recent(1)[0]
	if last.Type != TxInterestCredit {
		t.Fatalf("last=%+v", last)
	}
	assertDec(t, "interest amount", last.Amount, "45")

	// 可重複呼叫，無冷卻限制
	if _, err := s.CreditInterest(); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Transactions()); got != 3 {
		t.Fatalf("ledger len=%d want 3", got)
	}

	if _, err := c.CreditInterest(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
}

// TestSavingsMonthlyCharges 6 筆交易、門檻 5、每筆超額 10：扣 10 並歸零計數。
func TestSavingsMonthlyCharges(t *testing.T) {
	b, _ := newTestBank(t)
	s := open(t, b, KindSavings, "5000") // 開戶計 1 筆
	for i := 0; i < 5; i++ {
		if _, err := s.Deposit(dec("100")); err != nil {
			t.Fatal(err)
		}
	}
	if got := *s.Info().MonthlyTransactions; got != 6 {
		t.Fatalf("monthly transactions=%d want 6", got)
	}

	rep := s.ApplyMonthlyCharges()
	if rep.Status != StatusOK {
		t.Fatalf("rep=%+v", rep)
	}
	assertDec(t, "balance", s.Balance(), "5490")
	last := s.Recent(1)[0]
	if last.Type != TxTransactionCharges {
		t.Fatalf("last=%+v", last)
	}
	assertDec(t, "charge", last.Amount, "10")
	if got := *s.Info().MonthlyTransactions; got != 0 {
		t.Fatalf("counter=%d want 0", got)
	}

	// 計數已歸零：第二次呼叫無費用
	if rep := s.ApplyMonthlyCharges(); rep.Status != StatusNone {
		t.Fatalf("second run rep=%+v", rep)
	}
}

// TestSavingsChargesUnaffordableStillResets 扣不起時略過，但計數仍歸零。
func TestSavingsChargesUnaffordableStillResets(t *testing.T) {
	b, _ := newTestBank(t)
	s := open(t, b, KindSavings, "1000")
	for i := 0; i < 110; i++ {
		if _, err := s.Deposit(dec("0.01")); err != nil {
			t.Fatal(err)
		}
	}
	// 111 筆交易 → 費用 1060 > 餘額 1001.10
	before := len(s.Transactions())
	rep := s.ApplyMonthlyCharges()
	if rep.Status != StatusSkipped {
		t.Fatalf("rep=%+v", rep)
	}
	assertDec(t, "balance", s.Balance(), "1001.10")
	if len(s.Transactions()) != before {
		t.Fatalf("no ledger entry expected when charge is skipped")
	}
	if got := *s.Info().MonthlyTransactions; got != 0 {
		t.Fatalf("counter=%d want 0", got)
	}
}

// TestInactiveChargesResetCounterBeforeReactivation 停用期間的月結會結束本期；
// 重新啟用後不會以上期筆數收費。
func TestInactiveChargesResetCounterBeforeReactivation(t *testing.T) {
	b, _ := newTestBank(t)
	s := open(t, b, KindSavings, "5000")
	for i := 0; i < 6; i++ {
		if _, err := s.Deposit(dec("1")); err != nil {
			t.Fatal(err)
		}
	}
	if got := *s.Info().MonthlyTransactions; got != 7 {
		t.Fatalf("monthly transactions=%d want 7", got)
	}

	s.setActive(false)
	if rep := s.ApplyMonthlyCharges(); rep.Status != StatusInactive {
		t.Fatalf("inactive rep=%+v", rep)
	}
	s.setActive(true)

	if rep := s.ApplyMonthlyCharges(); rep.Status != StatusNone {
		t.Fatalf("after reactivation rep=%+v", rep)
	}
	assertDec(t, "balance", s.Balance(), "5006")
}

// TestSavingsCounterCountsTransferLegs 轉帳的提款與存款各計一筆交易。
func TestSavingsCounterCountsTransferLegs(t *testing.T) {
	b, _ := newTestBank(t)
	s1 := open(t, b, KindSavings, "5000")
	s2 := open(t, b, KindSavings, "5000")
	if _, err := s1.Transfer(s2, dec("1000")); err != nil {
		t.Fatal(err)
	}
	if *s1.Info().MonthlyTransactions != 2 || *s2.Info().MonthlyTransactions != 2 {
		t.Fatalf("counters=%d,%d want 2,2", *s1.Info().MonthlyTransactions, *s2.Info().MonthlyTransactions)
	}
}

// TestCurrentMonthlyMaintenance 餘額足夠時扣 500；不足時整筆略過。
func TestCurrentMonthlyMaintenance(t *testing.T) {
	b, _ := newTestBank(t)
	c := open(t, b, KindCurrent, "1000")

	for i, want := range []string{"500", "0"} {
		if rep := c.ApplyMonthlyCharges(); rep.Status != StatusOK {
			t.Fatalf("run %d rep=%+v", i, rep)
		}
		assertDec(t, "balance", c.Balance(), want)
	}
	if rep := c.ApplyMonthlyCharges(); rep.Status != StatusSkipped {
		t.Fatalf("rep=%+v", rep)
	}
	assertDec(t, "balance", c.Balance(), "0")
	txs := c.Transactions()
	if len(txs) != 3 || txs[2].Type != TxMonthlyMaintenance {
		t.Fatalf("ledger=%+v", txs)
	}
}

// TestOverdraftScenario 額度 50000：60000 拒絕；20000 成功；再 35000 拒絕。
func TestOverdraftScenario(t *testing.T) {
	b, _ := newTestBank(t)
	c := open(t, b, KindCurrent, "1000")

	if rep, err := c.UseOverdraft(dec("60000")); err != nil || rep.Status != StatusRejected {
		t.Fatalf("60000: rep=%+v err=%v", rep, err)
	}
	if rep, err := c.UseOverdraft(dec("20000")); err != nil || !rep.Applied() {
		t.Fatalf("20000: rep=%+v err=%v", rep, err)
	}
	if rep, err := c.UseOverdraft(dec("35000")); err != nil || rep.Status != StatusRejected {
		t.Fatalf("35000: rep=%+v err=%v", rep, err)
	}
	used, err := c.OverdraftUsed()
	if err != nil {
		t.Fatal(err)
	}
	assertDec(t, "used", used, "20000")
	assertDec(t, "balance", c.Balance(), "21000")

	// 透支通道不影響當日提款額度
	assertDec(t, "withdrawn today", c.Info().WithdrawnToday, "0")

	if rep, _ := c.RepayOverdraft(dec("25000")); rep.Status != StatusRejected {
		t.Fatalf("over-repay rep=%+v", rep)
	}
	if rep, err := c.RepayOverdraft(dec("5000")); err != nil || !rep.Applied() {
		t.Fatalf("repay rep=%+v err=%v", rep, err)
	}
	used, _ = c.OverdraftUsed()
	assertDec(t, "used", used, "15000")
	assertDec(t, "balance", c.Balance(), "16000")

	txs := c.Transactions()
	if txs[1].Type != TxOverdraftUsed || txs[2].Type != TxOverdraftRepay {
		t.Fatalf("ledger=%+v", txs)
	}
}

// TestOverdraftIgnoresMinBalance 還款可使餘額低於最低餘額（獨立通道）。
func TestOverdraftIgnoresMinBalance(t *testing.T) {
	b, _ := newTestBank(t)
	c := open(t, b, KindCurrent, "1000")
	if _, err := c.UseOverdraft(dec("3000")); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Withdraw(dec("2500")); err != nil {
		t.Fatal(err)
	}
	rep, err := c.RepayOverdraft(dec("3000"))
	if err != nil || !rep.Applied() {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
	assertDec(t, "balance", c.Balance(), "-1500")
}

func TestOverdraftUnsupportedForSavings(t *testing.T) {
	b, _ := newTestBank(t)
	s := open(t, b, KindSavings, "5000")
	if _, err := s.UseOverdraft(dec("10")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
	if _, err := s.RepayOverdraft(dec("10")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
	if _, err := s.OverdraftUsed(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
}

func TestInfoAndFeatures(t *testing.T) {
	b, _ := newTestBank(t)
	s := open(t, b, KindSavings, "5000")
	c := open(t, b, KindCurrent, "5000")

	si := s.Info()
	if si.Kind != KindSavings || !si.Active || si.OpenDate != "2026-03-10" || si.OverdraftUsed != nil || si.MonthlyTransactions == nil {
		t.Fatalf("savings info=%+v", si)
	}
	assertDec(t, "savings limit", si.DailyLimit, "50000")
	ci := c.Info()
	if ci.Kind != KindCurrent || ci.OverdraftLimit == nil || ci.MonthlyTransactions != nil {
		t.Fatalf("current info=%+v", ci)
	}
	assertDec(t, "current limit", ci.DailyLimit, "200000")
	if s.DescribeFeatures() == c.DescribeFeatures() || si.Features == "" {
		t.Fatalf("features should differ per kind")
	}
}
