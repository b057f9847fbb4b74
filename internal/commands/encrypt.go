package commands

import (
	"github.com/spf13/cobra"

	"github.com/Ninja-Atmos/pixlock/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := resolveConfig(args, false)
			if err != nil {
				return err
			}

			return logic.Run(cfg)
		},
	}
}
