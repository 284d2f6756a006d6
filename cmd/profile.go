package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smmsclient/smms/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show account details and disk quota",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := env.requireSession(); err != nil {
			return err
		}

		profile, err := await(cmd.Context(), func() (*domain.Profile, error) {
			return env.host.Profile(cmd.Context())
		})
		if err != nil {
			return err
		}
		return printProfile(cmd.OutOrStdout(), profile)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

func printProfile(out io.Writer, p *domain.Profile) error {
	verified := "no"
	if p.EmailVerified {
		verified = "yes"
	}
	usage := fmt.Sprintf("%s / %s", p.DiskUsage, p.DiskLimit)
	if p.DiskLimitRaw > 0 {
		usage = fmt.Sprintf("%s / %s (%.1f%%)",
			humanize.Bytes(uint64(max(p.DiskUsageRaw, 0))),
			humanize.Bytes(uint64(p.DiskLimitRaw)),
			p.QuotaRatio()*100)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", p.Username)
	fmt.Fprintf(w, "Email:\t%s (verified: %s)\n", p.Email, verified)
	fmt.Fprintf(w, "Role:\t%s\n", p.Role)
	fmt.Fprintf(w, "Group expires:\t%s\n", p.GroupExpire)
	fmt.Fprintf(w, "Disk usage:\t%s\n", usage)
	return w.Flush()
}
