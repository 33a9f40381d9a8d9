// internal/bank/savings.go
//
// 儲蓄帳戶：按月計息，每月前 SavingsFreeTransactions 筆交易免費，
// 超出部分每筆收取 SavingsExcessFee。

package bank

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const SavingsFreeTransactions = 5

var (
	SavingsInterestRate = decimal.RequireFromString("4.5") // 年利率（%）
	SavingsDailyLimit   = decimal.NewFromInt(50000)
	SavingsExcessFee    = decimal.NewFromInt(10)

	monthsPerYearPct = decimal.NewFromInt(100 * 12)
)

type savings struct {
	txCount int // 本期交易筆數
}

func (s *savings) kind() Kind { return KindSavings }
func (s *savings) dailyLimit() decimal.Decimal { return SavingsDailyLimit }

// interest = balance * rate / (100 * 12)
func (s *savings) interest(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(SavingsInterestRate).Div(monthsPerYearPct)
}

func (s *savings) committed(TxType) { s.txCount++ }
func (s *savings) resetPeriod() { s.txCount = 0 }

// applyMonthlyCharges 超額交易費；無論是否扣款成功，計數一律歸零。
func (s *savings) applyMonthlyCharges(a *Account) Report {
	count := s.txCount
	s.resetPeriod()

	if count <= SavingsFreeTransactions {
		return a.report(StatusNone, "no transaction charges due")
	}
	charge := decimal.NewFromInt(int64(count - SavingsFreeTransactions)).Mul(SavingsExcessFee)
	if a.balance.LessThan(charge) {
		a.log.Warn("insufficient balance for transaction charges",
			zap.String("charge", charge.String()),
			zap.String("balance", a.balance.String()))
		return a.report(StatusSkipped, "insufficient balance for transaction charges")
	}
	a.balance = a.balance.Sub(charge)
	rec := a.record(TxTransactionCharges, charge, "")
	return a.report(StatusOK, "", rec)
}

func (s *savings) features() string {
	return fmt.Sprintf("Interest Rate: %s%% per annum; Free Transactions: %d per month; "+
		"Transaction Charge: %s per transaction after free limit; Daily Withdrawal Limit: %s",
		SavingsInterestRate.String(), SavingsFreeTransactions,
		SavingsExcessFee.StringFixed(2), SavingsDailyLimit.StringFixed(2))
}
