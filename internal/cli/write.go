package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"z-novel-writer/internal/application/writing"
)

func newWriteCommand(a *app) *cobra.Command {
	var input, file string

	cmd := &cobra.Command{
		Use:   "write [book-id]",
		Short: "Stream a continuation using the book's context",
		Long: `Assemble recent chapters and retrieved background for the book, then
stream the model's continuation to stdout. Without a book id the input is
sent with no background.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bookID int64
			if len(args) == 1 {
				id, err := parseID(args[0], "book")
				if err != nil {
					return err
				}
				if _, err := a.kit.Library.GetBook(cmd.Context(), id); err != nil {
					return err
				}
				bookID = id
			}
			text, err := readText(cmd, input, file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			chunks := a.kit.Writing.Generate(cmd.Context(), writing.Request{
				BookID:   bookID,
				Input:    text,
				AIConfig: a.kit.AIConfig,
			})
			for chunk := range chunks {
				switch chunk.Type {
				case writing.ChunkContent:
					fmt.Fprint(out, chunk.Content)
				case writing.ChunkError:
					fmt.Fprintln(out)
					return chunk.Err
				case writing.ChunkDone:
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "writing instruction (default: read stdin)")
	cmd.Flags().StringVar(&file, "file", "", "read the instruction from file")
	return cmd
}
