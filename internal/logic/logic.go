// Package logic wires the key store, the token core and the filesystem into
// the encrypt/decrypt pipeline behind the CLI.
package logic

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Ninja-Atmos/pixlock/internal/config"
	"github.com/Ninja-Atmos/pixlock/internal/keystore"
)

// Run is the main logic of the application. It resolves the key, then
// encrypts or decrypts every configured file.
func Run(cfg *config.Config) error {
	start := time.Now()

	key, err := keystore.New(cfg.KeyFile).GetOrCreate()
	if err != nil {
		return fmt.Errorf("resolving key: %w", err)
	}

	proc := newProcessor(cfg, key)

	processed, errored, totalSize, err := proc.processFiles()

	if cfg.Stats {
		printStats(processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("processing files: %w", err)
	}

	return nil
}

func printStats(processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", processed)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
