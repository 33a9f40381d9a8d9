// internal/storage/jsonstore.go
//
// 提供 JSON 快照的讀寫。寫入採「原子替換」：
// 先寫入同目錄下的暫存檔，再以 rename() 取代原檔，寫入中斷時原檔不受影響。
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoSnapshot 代表快照檔不存在（首次啟動的正常情況）。
var ErrNoSnapshot = errors.New("snapshot not found")

// LoadSnapshot 讀取並解析指定路徑的快照。
// 檔案不存在回傳 ErrNoSnapshot；版本不符回傳錯誤，避免以舊格式覆蓋狀態。
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snap, ErrNoSnapshot
		}
		return snap, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Meta.Version != SchemaVersion {
		return snap, fmt.Errorf("snapshot %s: unsupported version %d (want %d)", path, snap.Meta.Version, SchemaVersion)
	}
	return snap, nil
}

// SaveSnapshot 設定 Meta 後以原子方式寫入快照。
func SaveSnapshot(path string, snap Snapshot) error {
	snap.Meta.Storage = "json_snapshot"
	snap.Meta.Version = SchemaVersion
	snap.Meta.Timestamp = time.Now()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmp := f.Name()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}
