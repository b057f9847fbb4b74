package logic

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Ninja-Atmos/pixlock/internal/config"
	"github.com/Ninja-Atmos/pixlock/internal/fileutil"
	"github.com/Ninja-Atmos/pixlock/pkg/fernet"
)

// result represents the outcome of processing a single file.
type result struct {
	// Input file path
	input string

	// Output file path
	output string

	// Output file size in bytes
	outputSize int64

	// Any error that occurred during processing
	err error
}

// processor handles the encryption and decryption of files.
type processor struct {
	// cfg contains runtime configuration options
	cfg *config.Config

	// key is the symmetric key borrowed from the key store for the run
	key []byte

	// results channels processing outcomes to the printer goroutine
	results chan result
}

func newProcessor(cfg *config.Config, key []byte) *processor {
	return &processor{
		cfg:     cfg,
		key:     key,
		results: make(chan result, len(cfg.Files)),
	}
}

// processFiles concurrently processes all files specified in the
// configuration. Returns the number of successfully processed files, the
// number of errors and the total output size.
func (p *processor) processFiles() (processed, errored int, totalSize int64, err error) {
	group := errgroup.Group{}
	group.SetLimit(p.cfg.Parallel)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for res := range p.results {
			if res.err != nil {
				errored++

				report(res.input, res.err)
			} else {
				processed++

				totalSize += res.outputSize

				if !p.cfg.Quiet {
					fmt.Printf("Processed %q -> %q\n", res.input, res.output) //nolint:forbidigo
				}
			}

			if p.cfg.Delete && res.err == nil {
				if err := os.Remove(res.input); err != nil {
					fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", res.input, err)
				} else if !p.cfg.Quiet {
					fmt.Printf("Deleted %q\n", res.input) //nolint:forbidigo
				}
			}
		}
	}()

	for _, file := range p.cfg.Files {
		file := file

		group.Go(func() error {
			outPath := p.outputPath(file)

			size, err := p.processFile(file, outPath)
			if err != nil {
				p.results <- result{input: file, err: err}

				return err
			}

			p.results <- result{input: file, output: outPath, outputSize: size}

			return nil
		})
	}

	err = group.Wait()

	close(p.results)

	<-done // Wait for printer to finish

	return processed, errored, totalSize, err
}

// report writes a per-file failure to stderr. A padding failure after a
// verified tag means an internal bug, so it is labelled apart from ordinary
// authentication failures to keep the two diagnosable.
func report(input string, err error) {
	if errors.Is(err, fernet.ErrInvalidPadding) {
		fmt.Fprintf(os.Stderr, "Internal error processing %q: %v\n", input, err)

		return
	}

	fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", input, err)
}

// processFile seals or opens a single file. Output goes through a temporary
// file and an atomic rename, so a failure leaves no half-written result.
func (p *processor) processFile(filename, outPath string) (size int64, err error) {
	tc, err := fileutil.NewTempContext(filename, outPath)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	input, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return 0, fmt.Errorf("reading input file: %w", err)
	}

	var output []byte

	if p.cfg.Decrypt {
		output, err = fernet.Open(p.key, input)
		if err != nil {
			return 0, fmt.Errorf("decrypting file: %w", err)
		}
	} else {
		output, err = fernet.Seal(p.key, input)
		if err != nil {
			return 0, fmt.Errorf("encrypting file: %w", err)
		}
	}

	if _, err = tc.TmpFile.Write(output); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}

	const ownerReadWrite = 0o600

	size, err = tc.Commit(outPath, ownerReadWrite)
	if err != nil {
		return 0, err
	}

	return size, nil
}

// outputPath generates the output file path based on the input filename
// and the configured suffixes for encryption/decryption.
func (p *processor) outputPath(filename string) string {
	ext := p.cfg.EncryptSuffix

	if p.cfg.Decrypt {
		filename = strings.TrimSuffix(filename, p.cfg.EncryptSuffix)
		ext = p.cfg.DecryptSuffix
	}

	return filepath.Join(filepath.Dir(filename),
		filepath.Base(filename)+ext)
}
