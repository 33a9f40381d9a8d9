// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP RESTful 介面，作為 bank 模組的應用層 (Application Layer)。
// 每個 handler 僅負責：
//  1. 接收與驗證 HTTP 請求
//  2. 呼叫 bank 層執行商業邏輯
//  3. 回傳 Report 或結構化錯誤
//  4. 有新增帳本紀錄時呼叫 persist 並發佈交易事件
//
// bank 不依賴 HTTP；server 依賴 bank、events 與 metrics。
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bankledger/internal/bank"
	"bankledger/internal/events"
	"bankledger/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultStatementWindow = 30 * 24 * time.Hour
	defaultMiniStatement   = 5
	publishTimeout         = 2 * time.Second
)

// Server 為 HTTP 層核心結構：
// - Bank：注入商業邏輯層（銀行核心）。
// - persist：持久化鉤子，可為 nil。
// - pub：交易事件發佈者，預設 events.NopPublisher。
type Server struct {
	Bank    *bank.Bank
	persist func() error
	pub     events.Publisher
	log     *zap.Logger
	origins []string
}

// Option 設定 Server 的可選依賴。
type Option func(*Server)

func WithPublisher(p events.Publisher) Option { return func(s *Server) { s.pub = p } }

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// WithCORSOrigins 設定允許的來源；預設 "*"。
func WithCORSOrigins(origins []string) Option { return func(s *Server) { s.origins = origins } }

// NewServer 建立新的 HTTP 伺服器。
// persist 可為 nil；若提供則會於每次有帳本變更的操作後觸發。
func NewServer(b *bank.Bank, persist func() error, opts ...Option) *Server {
	s := &Server{
		Bank:    b,
		persist: persist,
		pub:     events.NopPublisher{},
		log:     zap.NewNop(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// decode 解析 JSON body；失敗時包裝為 errBadRequest。
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

type amountReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// run 執行一次變更型操作並統一處理 metrics、回應與後續動作。
func (s *Server) run(w http.ResponseWriter, r *http.Request, op string, fn func() (bank.Report, error)) {
	start := time.Now()
	rep, err := fn()
	if err != nil {
		metrics.Observe(op, errKind(err), start)
		writeErr(w, err)
		return
	}
	metrics.Observe(op, string(rep.Status), start)
	s.afterCommit(r.Context(), op, rep.Records)
	writeJSON(w, http.StatusOK, rep)
}

// afterCommit 在有新帳本紀錄時持久化快照並發佈事件；兩者失敗皆只記錄，不影響回應。
func (s *Server) afterCommit(ctx context.Context, op string, recs []bank.Transaction) {
	if len(recs) == 0 {
		return
	}
	if s.persist != nil {
		if err := s.persist(); err != nil {
			metrics.PersistFailed()
			s.log.Error("persist snapshot failed", zap.String("op", op), zap.Error(err))
		}
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.pub.Publish(ctx, recs); err != nil {
		metrics.PublishFailed()
		s.log.Warn("publish ledger events failed", zap.String("op", op), zap.Int("records", len(recs)), zap.Error(err))
	}
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bankInfo：GET /bank
func (s *Server) bankInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Bank.Info())
}

// listAccounts：GET /accounts
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	all := s.Bank.List()
	out := make([]bank.Info, 0, len(all))
	for _, a := range all {
		out = append(out, a.Info())
	}
	writeJSON(w, http.StatusOK, out)
}

type createReq struct {
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Kind           string          `json:"kind"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// createAccount：POST /accounts
// 成功回傳 201 與帳戶資訊；初始存款不足時回傳 200 與 rejected 報告。
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req createReq
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	kind, err := bank.ParseKind(req.Kind)
	if err != nil {
		metrics.Observe("create", errKind(err), start)
		writeErr(w, err)
		return
	}
	a, rep, err := s.Bank.Create(bank.Opening{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Kind:           kind,
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		metrics.Observe("create", errKind(err), start)
		writeErr(w, err)
		return
	}
	metrics.Observe("create", string(rep.Status), start)
	if a == nil {
		writeJSON(w, http.StatusOK, rep)
		return
	}
	s.afterCommit(r.Context(), "create", rep.Records)
	writeJSON(w, http.StatusCreated, map[string]any{"account": a.Info(), "report": rep})
}

// account 依路徑參數 {id} 取得帳戶；失敗時已寫出錯誤回應。
func (s *Server) account(w http.ResponseWriter, r *http.Request) (*bank.Account, bool) {
	a, err := s.Bank.Find(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return a, true
}

// getAccount：GET /accounts/{id}
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, ok := s.account(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.Info())
}

// amountOp 包裝 {amount} 請求的帳戶操作（存款、提款、透支、還款）。
func (s *Server) amountOp(op string, fn func(*bank.Account, decimal.Decimal) (bank.Report, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := s.account(w, r)
		if !ok {
			return
		}
		var req amountReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		s.run(w, r, op, func() (bank.Report, error) { return fn(a, req.Amount) })
	}
}

// creditInterest：POST /accounts/{id}/interest（僅儲蓄帳戶）
func (s *Server) creditInterest(w http.ResponseWriter, r *http.Request) {
	a, ok := s.account(w, r)
	if !ok {
		return
	}
	s.run(w, r, "interest", a.CreditInterest)
}

// monthlyCharges：POST /accounts/{id}/charges
func (s *Server) monthlyCharges(w http.ResponseWriter, r *http.Request) {
	a, ok := s.account(w, r)
	if !ok {
		return
	}
	s.run(w, r, "charges", func() (bank.Report, error) { return a.ApplyMonthlyCharges(), nil })
}

// setStatus：POST /accounts/{id}/status {active}
func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active *bool `json:"active"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if req.Active == nil {
		writeErr(w, fmt.Errorf("%w: active is required", errBadRequest))
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Bank.SetActive(id, *req.Active); err != nil {
		writeErr(w, err)
		return
	}
	if s.persist != nil {
		if err := s.persist(); err != nil {
			metrics.PersistFailed()
			s.log.Error("persist snapshot failed", zap.String("op", "status"), zap.Error(err))
		}
	}
	a, _ := s.Bank.Find(id)
	writeJSON(w, http.StatusOK, a.Info())
}

// statement：GET /accounts/{id}/statement?from=&to=（RFC3339；預設最近 30 天）
func (s *Server) statement(w http.ResponseWriter, r *http.Request) {
	a, ok := s.account(w, r)
	if !ok {
		return
	}
	to := s.Bank.Now()
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeErr(w, fmt.Errorf("%w: to: %v", errBadRequest, err))
			return
		}
		to = t
	}
	from := to.Add(-defaultStatementWindow)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeErr(w, fmt.Errorf("%w: from: %v", errBadRequest, err))
			return
		}
		from = t
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":   a.ID(),
		"from":         from,
		"to":           to,
		"transactions": a.Statement(from, to),
	})
}

// miniStatement：GET /accounts/{id}/mini?n=5
// lines 為存摺格式的單行輸出。
func (s *Server) miniStatement(w http.ResponseWriter, r *http.Request) {
	a, ok := s.account(w, r)
	if !ok {
		return
	}
	n := defaultMiniStatement
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeErr(w, fmt.Errorf("%w: n must be a non-negative integer", errBadRequest))
			return
		}
		n = parsed
	}
	recs := a.Recent(n)
	lines := make([]string, 0, len(recs))
	for _, t := range recs {
		lines = append(lines, t.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":   a.ID(),
		"balance":      a.Balance(),
		"transactions": recs,
		"lines":        lines,
	})
}

// transfer：POST /transfer {from, to, amount}
func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From   string          `json:"from"`
		To     string          `json:"to"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	s.run(w, r, "transfer", func() (bank.Report, error) {
		return s.Bank.Transfer(req.From, req.To, req.Amount)
	})
}

// monthEnd：POST /month-end
func (s *Server) monthEnd(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reports := s.Bank.MonthEnd()
	var recs []bank.Transaction
	for _, rep := range reports {
		recs = append(recs, rep.Records...)
	}
	metrics.Observe("month_end", string(bank.StatusOK), start)
	s.afterCommit(r.Context(), "month_end", recs)
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}
