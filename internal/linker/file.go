// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ProcessFile reads the input document, runs the pipeline, and writes the
// output atomically: the result lands in a temp file next to the
// destination and is renamed into place, so a failed run never leaves a
// partially written output file.
func (l *Linker) ProcessFile(ctx context.Context, inputPath, outputPath string) (Result, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", inputPath, err)
	}

	res, err := l.Process(ctx, string(data))
	if err != nil {
		return Result{}, err
	}

	if err := writeAtomic(outputPath, []byte(res.Output)); err != nil {
		return Result{}, err
	}
	return res, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".musiclink-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
