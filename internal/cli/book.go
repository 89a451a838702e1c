package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBookCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage books",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Create a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.kit.Library.CreateBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s book %d %s\n", success("created"), book.ID, accent(book.Title))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List books, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := a.kit.Library.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(books) == 0 {
				fmt.Fprintln(out, faint("no books"))
				return nil
			}
			for _, b := range books {
				fmt.Fprintf(out, "%4d  %s  %s\n", b.ID, accent(b.Title), faint(b.WorldviewEmbedding.Status.Label()))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a book with its characters and chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := a.kit.Library.DeleteBook(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s book %d\n", success("deleted"), id)
			return nil
		},
	})

	return cmd
}
