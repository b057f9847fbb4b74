package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ninja-Atmos/pixlock/internal/keystore"
)

// NewKeygenCommand creates a new cobra command for the keygen subcommand.
// Encryption creates the key implicitly on first use; keygen makes that step
// explicit so the key file can be provisioned and backed up up front.
func NewKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "keygen [flags]",
		Aliases: []string{"gen"},
		Short:   "Generate the encryption key if it does not exist yet",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := viper.GetString("key-file")
			if path == "" {
				return errors.New("key file path must not be empty")
			}

			_, statErr := os.Stat(path)
			existed := statErr == nil

			if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
				return fmt.Errorf("checking key file: %w", statErr)
			}

			store := keystore.New(path)
			if _, err := store.GetOrCreate(); err != nil {
				return fmt.Errorf("creating key: %w", err)
			}

			if !viper.GetBool("quiet") {
				if existed {
					fmt.Printf("Key already exists at %q\n", store.Path()) //nolint:forbidigo
				} else {
					fmt.Printf("Generated new key at %q\n", store.Path()) //nolint:forbidigo
				}
			}

			return nil
		},
	}
}
