package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smmsclient/smms/internal/domain"
)

var listPage int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded images (non-interactive)",
	Long:  "Print one page of your upload history. Useful for scripting.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPage < 1 {
			return fmt.Errorf("invalid page %d", listPage)
		}

		env, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := env.requireSession(); err != nil {
			return err
		}

		images, err := await(cmd.Context(), func() ([]domain.Image, error) {
			return env.host.UploadHistory(cmd.Context(), listPage)
		})
		if err != nil {
			return err
		}
		return printImageTable(cmd.OutOrStdout(), images)
	},
}

func init() {
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "history page to show")
	rootCmd.AddCommand(listCmd)
}

func printImageTable(out io.Writer, images []domain.Image) error {
	if len(images) == 0 {
		_, err := fmt.Fprintln(out, "No uploads on this page")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HASH\tFILENAME\tSIZE\tDIMENSIONS\tUPLOADED\tURL")
	for _, img := range images {
		uploaded := "-"
		if !img.CreatedAt.IsZero() {
			uploaded = img.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%s\n",
			img.Hash,
			img.Filename,
			humanize.Bytes(uint64(max(img.Size, 0))),
			img.Width, img.Height,
			uploaded,
			img.URL,
		)
	}
	return w.Flush()
}
