package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChapterCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapter",
		Short: "Manage chapters",
	}

	var content, file string
	add := &cobra.Command{
		Use:   "add <book-id> <title>",
		Short: "Add a chapter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			body, err := readText(cmd, content, file)
			if err != nil {
				return err
			}
			ch, err := a.kit.Library.SaveChapter(cmd.Context(), bookID, args[1], body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s chapter %d %s (%d chars)\n",
				success("created"), ch.ID, accent(ch.Title), ch.WordCount())
			return nil
		},
	}
	add.Flags().StringVar(&content, "content", "", "chapter content")
	add.Flags().StringVar(&file, "file", "", "read content from file")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "list <book-id>",
		Short: "List a book's chapters, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			chapters, err := a.kit.Library.ListChapters(cmd.Context(), bookID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(chapters) == 0 {
				fmt.Fprintln(out, faint("no chapters"))
				return nil
			}
			for _, ch := range chapters {
				fmt.Fprintf(out, "%4d  %s  %s\n", ch.ID, accent(ch.Title), faint(fmt.Sprintf("%d chars", ch.WordCount())))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "chapter")
			if err != nil {
				return err
			}
			if err := a.kit.Library.DeleteChapter(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s chapter %d\n", success("deleted"), id)
			return nil
		},
	})

	return cmd
}
