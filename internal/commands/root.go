package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ninja-Atmos/pixlock/internal/config"
)

// defaultKeyFile is where the key lands unless overridden. Matches the name
// the tool has always used, so existing deployments keep working.
const defaultKeyFile = "secret.key"

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "pixlock [flags] command [flags]",
		Short: "Authenticated file encryption utility",
		Long: `A file encryption utility for images and other binary payloads.
Seals each file into a self-contained, tamper-evident token under a single
symmetric key, generated on first use and persisted across runs.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			viper.SetEnvPrefix("PIXLOCK")
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			viper.AutomaticEnv()

			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}

			return nil
		},
	}

	root.PersistentFlags().StringP("key-file", "k", defaultKeyFile,
		"Path to the key file, created on first use")
	root.PersistentFlags().IntP("parallel", "j", runtime.NumCPU(),
		"Number of parallel workers, defaults to number of CPUs")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().BoolP("delete", "d", false,
		"Delete the original file after successful encryption/decryption")
	root.PersistentFlags().Bool("stats", false, "Print a processing summary")

	root.PersistentFlags().String("encrypt-ext", ".enc", "Suffix to append to encrypted files")
	root.PersistentFlags().String("decrypt-ext", "",
		"Suffix to append to decrypted files, after stripping the encrypted suffix")

	root.AddCommand(NewEncryptCommand(), NewDecryptCommand(), NewKeygenCommand())

	return root
}

// resolveConfig unmarshals the bound flags and environment into a Config and
// validates it with the given positional arguments attached.
func resolveConfig(args []string, decrypt bool) (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Files = args
	cfg.Decrypt = decrypt

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
