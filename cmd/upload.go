package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smmsclient/smms/internal/domain"
	"github.com/smmsclient/smms/internal/smms"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload images and print their URLs",
	Long:  "Upload each file in turn. Files already on sm.ms print their existing URL. The command fails if any upload fails.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := env.requireSession(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var failed int
		for _, path := range args {
			img, err := await(cmd.Context(), func() (*domain.Image, error) {
				return env.host.Upload(cmd.Context(), path)
			})

			var apiErr *smms.APIError
			switch {
			case err == nil:
				fmt.Fprintf(out, "%s\t%s\n", path, img.URL)
			case errors.As(err, &apiErr) && apiErr.IsDuplicate() && apiErr.ExistingURL != "":
				fmt.Fprintf(out, "%s\t%s (already uploaded)\n", path, apiErr.ExistingURL)
			default:
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
