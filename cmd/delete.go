package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <hash>",
	Short: "Delete an uploaded image by its hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := env.requireSession(); err != nil {
			return err
		}

		hash := args[0]
		if _, err := await(cmd.Context(), func() (struct{}, error) {
			return struct{}{}, env.host.Delete(cmd.Context(), hash)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
