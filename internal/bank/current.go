// internal/bank/current.go
//
// 活期帳戶：不計息、固定月維護費，另提供獨立於每日限額與最低餘額之外的透支通道。

package bank

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	CurrentMaintenanceFee = decimal.NewFromInt(500)
	CurrentDailyLimit     = decimal.NewFromInt(200000)
	OverdraftLimit        = decimal.NewFromInt(50000)
)

type current struct {
	used decimal.Decimal // 已使用透支額度，0 <= used <= OverdraftLimit
}

func (c *current) kind() Kind { return KindCurrent }
func (c *current) dailyLimit() decimal.Decimal { return CurrentDailyLimit }
func (c *current) interest(decimal.Decimal) decimal.Decimal { return decimal.Zero }
func (c *current) committed(TxType) {}
func (c *current) resetPeriod() {}

// applyMonthlyCharges 收取固定維護費；餘額不足則整筆略過，不做部分扣款。
func (c *current) applyMonthlyCharges(a *Account) Report {
	if a.balance.LessThan(CurrentMaintenanceFee) {
		a.log.Warn("insufficient balance for monthly maintenance",
			zap.String("fee", CurrentMaintenanceFee.String()),
			zap.String("balance", a.balance.String()))
		return a.report(StatusSkipped, "insufficient balance for monthly maintenance charge")
	}
	a.balance = a.balance.Sub(CurrentMaintenanceFee)
	rec := a.record(TxMonthlyMaintenance, CurrentMaintenanceFee, "")
	return a.report(StatusOK, "", rec)
}

func (c *current) features() string {
	return fmt.Sprintf("No Interest Earnings; Monthly Maintenance: %s; Overdraft Facility: %s; "+
		"Unlimited Transactions; Daily Withdrawal Limit: %s",
		CurrentMaintenanceFee.StringFixed(2), OverdraftLimit.StringFixed(2), CurrentDailyLimit.StringFixed(2))
}

// UseOverdraft 動用透支：增加已用額度與餘額。
// 超過 OverdraftLimit 時回報 StatusRejected（非錯誤）。
func (a *Account) UseOverdraft(amount decimal.Decimal) (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.variant.(*current)
	if !ok {
		return Report{}, ErrUnsupported
	}
	if !amount.IsPositive() {
		return Report{}, ErrInvalidAmount
	}
	if !a.active {
		return a.inactive("use_overdraft"), nil
	}
	if c.used.Add(amount).GreaterThan(OverdraftLimit) {
		available := OverdraftLimit.Sub(c.used)
		a.log.Warn("overdraft limit exceeded",
			zap.String("requested", amount.String()),
			zap.String("available", available.String()))
		return a.report(StatusRejected, "overdraft limit exceeded, available: "+available.StringFixed(2)), nil
	}
	c.used = c.used.Add(amount)
	a.balance = a.balance.Add(amount)
	rec := a.record(TxOverdraftUsed, amount, "")
	return a.report(StatusOK, "", rec), nil
}

// RepayOverdraft 償還透支：減少已用額度與餘額。
// 還款金額大於已用額度時回報 StatusRejected。
func (a *Account) RepayOverdraft(amount decimal.Decimal) (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.variant.(*current)
	if !ok {
		return Report{}, ErrUnsupported
	}
	if !amount.IsPositive() {
		return Report{}, ErrInvalidAmount
	}
	if !a.active {
		return a.inactive("repay_overdraft"), nil
	}
	if amount.GreaterThan(c.used) {
		a.log.Warn("repayment exceeds overdraft used",
			zap.String("requested", amount.String()),
			zap.String("used", c.used.String()))
		return a.report(StatusRejected, "repayment amount exceeds overdraft used"), nil
	}
	c.used = c.used.Sub(amount)
	a.balance = a.balance.Sub(amount)
	rec := a.record(TxOverdraftRepay, amount, "")
	return a.report(StatusOK, "", rec), nil
}

// OverdraftUsed 回傳已使用透支額度；非活期帳戶回傳 ErrUnsupported。
func (a *Account) OverdraftUsed() (decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.variant.(*current)
	if !ok {
		return decimal.Zero, ErrUnsupported
	}
	return c.used, nil
}
