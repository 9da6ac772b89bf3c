package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/realmgate/internal/services/credential"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <username> [password]",
		Short: "Print the stored credential hash for a username and password",
		Long: `Print the stored credential hash for a username and password.

When the password argument is omitted it is read from the first line of stdin,
which keeps it out of shell history and the process list:

  printf '%s\n' "$PASSWORD" | realmctl hash Player1`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			var password string
			if len(args) == 2 {
				password = args[1]
			} else {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(HashResult{
				Username: username,
				Hash:     credential.Encode(username, password),
			})
			return nil
		},
	}
}

// readPassword returns the first line of r without its line ending
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password required: pass it as an argument or on stdin")
	}
	return password, nil
}
