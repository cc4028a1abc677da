package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/velotype/internal/model"
)

// Format is the on-disk encoding used by FileBackend.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FileBackend stores history as a single JSON or YAML document.
type FileBackend struct {
	path   string
	format Format
}

// NewFileBackend picks the format from the file extension; anything other
// than .yaml/.yml is JSON.
func NewFileBackend(path string) *FileBackend {
	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return &FileBackend{path: path, format: format}
}

// Path returns the backing file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load implements Backend. A missing or empty file is an empty history.
func (b *FileBackend) Load(_ context.Context) ([]model.HistoryItem, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []model.HistoryItem
	switch b.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &items)
	default:
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode history %s: %w", b.path, err)
	}
	return items, nil
}

// Save implements Backend. The file is replaced atomically.
func (b *FileBackend) Save(_ context.Context, items []model.HistoryItem) error {
	if items == nil {
		items = []model.HistoryItem{}
	}
	var (
		data []byte
		err  error
	)
	switch b.format {
	case FormatYAML:
		data, err = yaml.Marshal(items)
	default:
		data, err = json.MarshalIndent(items, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "history-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}
