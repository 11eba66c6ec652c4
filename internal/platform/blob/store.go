package blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	cryptoutil "peopleops/internal/platform/crypto"
)

var ErrNotFound = errors.New("blob not found")

type Metadata struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Encrypted   bool   `json:"encrypted"`
}

// Store keeps uploaded file content on the local filesystem keyed by an
// opaque id, with a JSON sidecar per blob for metadata. Payloads are
// encrypted at rest when the crypto service is configured.
type Store struct {
	dir    string
	crypto *cryptoutil.Service
}

func NewStore(dir string, crypto *cryptoutil.Service) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("blob dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, crypto: crypto}, nil
}

func (s *Store) Put(data []byte, meta Metadata) (string, error) {
	fileID := uuid.NewString()
	meta.Size = int64(len(data))
	meta.Encrypted = s.crypto != nil && s.crypto.Configured()

	payload := data
	if meta.Encrypted {
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		payload = encrypted
	}

	if err := os.WriteFile(s.dataPath(fileID), payload, 0o600); err != nil {
		return "", err
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(s.metaPath(fileID), metaJSON, 0o600); err != nil {
		_ = os.Remove(s.dataPath(fileID))
		return "", err
	}
	return fileID, nil
}

func (s *Store) Get(fileID string) ([]byte, Metadata, error) {
	var meta Metadata
	metaJSON, err := os.ReadFile(s.metaPath(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, meta, ErrNotFound
		}
		return nil, meta, err
	}
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, meta, fmt.Errorf("blob %s metadata corrupt: %w", fileID, err)
	}

	payload, err := os.ReadFile(s.dataPath(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, meta, ErrNotFound
		}
		return nil, meta, err
	}
	if meta.Encrypted {
		if s.crypto == nil || !s.crypto.Configured() {
			return nil, meta, errors.New("blob is encrypted but no encryption key is configured")
		}
		plain, err := s.crypto.Decrypt(payload)
		if err != nil {
			return nil, meta, err
		}
		payload = plain
	}
	return payload, meta, nil
}

func (s *Store) Delete(fileID string) error {
	if err := os.Remove(s.dataPath(fileID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(s.metaPath(fileID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) dataPath(fileID string) string {
	return filepath.Join(s.dir, fileID+".bin")
}

func (s *Store) metaPath(fileID string) string {
	return filepath.Join(s.dir, fileID+".json")
}
