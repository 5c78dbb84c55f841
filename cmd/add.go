package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "create [text]",
	Aliases: []string{"add", "create_note"},
	Short:   "Create a new note",
	Long: `Create a new note. Surrounding quotes are stripped and the note is embedded
for semantic search before it is saved; if the embedding service is down
nothing is written.

With no arguments the note text is read from stdin.`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		read, err := readStdin(cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = read
	}
	return printResult(cmd, svc.Notes.CreateNote(cmd.Context(), text))
}

func readStdin(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprintln(os.Stderr, "Enter note text (Ctrl+D to finish):")
		}
	}
	var b strings.Builder
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read note text: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}
