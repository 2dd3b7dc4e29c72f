package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
)

// Data is the locally persisted mirror of the order cache.
type Data struct {
	BuyerOrders    []domain.Order         `json:"buyerOrders"`
	SellerOrders   []domain.Order         `json:"sellerOrders"`
	ReturnRequests []domain.ReturnRequest `json:"returnRequests"`
}

type FileStore struct {
	filePath string
	mu       sync.Mutex
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

// Load returns an empty snapshot when the file does not exist yet.
func (fs *FileStore) Load() (Data, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var data Data
	file, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return data, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return Data{}, fmt.Errorf("failed to decode snapshot %s: %w", fs.filePath, err)
	}
	return data, nil
}

// Save replaces the snapshot atomically: readers see either the old or the
// new file, never a half-written one.
func (fs *FileStore) Save(data Data) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, err := os.CreateTemp(filepath.Dir(fs.filePath), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	tmp := file.Name()
	defer os.Remove(tmp)

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, fs.filePath); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
