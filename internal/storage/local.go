// Package storage saves finished drafts to the local filesystem or to
// an S3 bucket.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Filename generates a timestamped draft file name.
func Filename(now time.Time) string {
	return "draft_" + now.Format("20060102_150405") + ".txt"
}

// SaveLocal writes the draft to path and returns where it landed. An
// empty path saves into draftsDir (default ~/drafts) under a
// timestamped name; a path ending in a separator is treated as a
// directory to generate the name in.
func SaveLocal(draft, path, draftsDir string) (string, error) {
	switch {
	case path == "":
		dir, err := defaultDir(draftsDir)
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, Filename(time.Now()))
	case strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", path, err)
		}
		path = filepath.Join(path, Filename(time.Now()))
	}

	if err := os.WriteFile(path, []byte(draft), 0o644); err != nil {
		return "", fmt.Errorf("save draft to %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("bytes", len(draft)).Msg("draft saved")
	return path, nil
}

func defaultDir(draftsDir string) (string, error) {
	if draftsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		draftsDir = filepath.Join(home, "drafts")
	}
	if err := os.MkdirAll(draftsDir, 0o755); err != nil {
		return "", fmt.Errorf("create drafts directory %s: %w", draftsDir, err)
	}
	return draftsDir, nil
}
