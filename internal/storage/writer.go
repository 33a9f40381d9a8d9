// internal/storage/writer.go
//
// Writer 將快照寫入序列化：取快照與寫檔在同一把鎖內完成，
// 並發呼叫時最後落盤的必為最新狀態。
package storage

import "sync"

type Writer struct {
	mu     sync.Mutex
	path   string
	source func() Snapshot
}

// NewWriter 建立寫入 path 的 Writer；source 於每次 Save 時提供當下快照。
func NewWriter(path string, source func() Snapshot) *Writer {
	return &Writer{path: path, source: source}
}

func (w *Writer) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return SaveSnapshot(w.path, w.source())
}
