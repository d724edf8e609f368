package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileLoader reads the JSON files the fetch scripts leave behind. Either SnapshotPath
// (one document with "bookmakers" and "markets") or the two per-source paths are used.
type FileLoader struct {
	SnapshotPath  string
	BookmakerPath string
	MarketPath    string
}

func (f *FileLoader) Name() string {
	return "file-loader"
}

func (f *FileLoader) Load(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if f.SnapshotPath != "" {
		var batch Batch
		if err := readJSON(f.SnapshotPath, &batch); err != nil {
			return Batch{}, err
		}
		return batch, nil
	}
	if f.BookmakerPath == "" || f.MarketPath == "" {
		return Batch{}, fmt.Errorf("file loader: snapshot path or both source paths are required")
	}
	var batch Batch
	if err := readJSON(f.BookmakerPath, &batch.Bookmakers); err != nil {
		return Batch{}, err
	}
	if err := readJSON(f.MarketPath, &batch.Markets); err != nil {
		return Batch{}, err
	}
	return batch, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
