package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smmsclient/smms/internal/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in and cache the API token",
	Long:  "Exchange your sm.ms username and password for an API token and store it in the session file. The password is read from the terminal, or from stdin when it is not a terminal.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}

		username := env.cfg.Username
		if len(args) == 1 {
			username = args[0]
		}

		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		if username == "" {
			fmt.Fprint(out, "Username: ")
			if username, err = readLine(in); err != nil {
				return err
			}
		}
		if username == "" {
			return fmt.Errorf("username is required")
		}

		password, err := readPassword(cmd.InOrStdin(), in, out)
		if err != nil {
			return err
		}

		token, err := await(cmd.Context(), func() (string, error) {
			return env.host.Token(cmd.Context(), username, password)
		})
		if err != nil {
			return err
		}

		if err := env.sessions.Save(domain.Session{Token: token}); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Fprintf(out, "Logged in as %s\n", username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(stdin io.Reader, buffered *bufio.Reader, out io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	password, err := readLine(buffered)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
