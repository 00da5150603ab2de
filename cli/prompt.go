package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// prompt writes label and reads one trimmed line from the command's input.
func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	if a.scanner == nil {
		a.scanner = bufio.NewScanner(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.OutOrStdout(), label)
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(a.scanner.Text()), nil
}
