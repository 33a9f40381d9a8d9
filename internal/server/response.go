// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式。
//   - 成功回應：JSON（Content-Type: application/json）。
//   - 失敗回應：{"error": 訊息, "kind": 錯誤分類, "details": 結構化欄位}，
//     HTTP 狀態碼由 statusFor 依領域錯誤決定。
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankledger/internal/bank"
)

// errBadRequest 標記請求本身格式錯誤（JSON、查詢參數）。
var errBadRequest = errors.New("bad request")

// errorBody 為失敗回應內容。
type errorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details any    `json:"details,omitempty"`
}

// writeJSON 統一輸出成功回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr 依錯誤種類輸出狀態碼與結構化內容。
func writeErr(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Kind: errKind(err)}

	var ib *bank.InsufficientBalanceError
	var dl *bank.DailyLimitExceededError
	switch {
	case errors.As(err, &ib):
		body.Details = ib
	case errors.As(err, &dl):
		body.Details = dl
	}
	writeJSON(w, statusFor(err), body)
}

// statusFor 對應：
//   - 400：金額非法、同帳戶轉帳、帳戶種類不明、請求格式錯誤
//   - 404：帳戶不存在
//   - 409：餘額不足、超過當日限額
//   - 422：該帳戶種類不支援此操作
func statusFor(err error) int {
	switch {
	case errors.Is(err, bank.ErrInvalidAmount),
		errors.Is(err, bank.ErrSameAccount),
		errors.Is(err, bank.ErrInvalidKind),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, bank.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrInsufficientBalance),
		errors.Is(err, bank.ErrDailyLimitExceeded):
		return http.StatusConflict
	case errors.Is(err, bank.ErrUnsupported):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// errKind 為錯誤分類名稱，同時作為 metrics 的 status 標籤。
func errKind(err error) string {
	switch {
	case errors.Is(err, bank.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, bank.ErrSameAccount):
		return "same_account"
	case errors.Is(err, bank.ErrInvalidKind):
		return "invalid_kind"
	case errors.Is(err, errBadRequest):
		return "bad_request"
	case errors.Is(err, bank.ErrNotFound):
		return "not_found"
	case errors.Is(err, bank.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, bank.ErrDailyLimitExceeded):
		return "daily_limit_exceeded"
	case errors.Is(err, bank.ErrUnsupported):
		return "unsupported"
	}
	return "internal"
}
