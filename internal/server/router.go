// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊（chi）。與 handler.go 分離：
// handler.go 定義「如何處理請求」，router.go 定義「請求如何被導向」。
package server

import (
	"net/http"
	"time"

	"bankledger/internal/bank"
	"bankledger/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 同一組路由同時掛在 / 與 /api/v1 之下。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", s.routes)
	s.routes(r)
	return r
}

func (s *Server) routes(r chi.Router) {
	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/bank", s.bankInfo)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", s.listAccounts)
		r.Post("/", s.createAccount)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getAccount)
			r.Post("/deposit", s.amountOp("deposit", (*bank.Account).Deposit))
			r.Post("/withdraw", s.amountOp("withdraw", (*bank.Account).Withdraw))
			r.Post("/interest", s.creditInterest)
			r.Post("/charges", s.monthlyCharges)
			r.Post("/overdraft", s.amountOp("overdraft", (*bank.Account).UseOverdraft))
			r.Post("/overdraft/repay", s.amountOp("overdraft_repay", (*bank.Account).RepayOverdraft))
			r.Post("/status", s.setStatus)
			r.Get("/statement", s.statement)
			r.Get("/mini", s.miniStatement)
		})
	})

	r.Post("/transfer", s.transfer)
	r.Post("/month-end", s.monthEnd)
}
