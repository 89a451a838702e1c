package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorldviewCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worldview",
		Short: "Manage a book's worldview",
	}

	var text, file string
	set := &cobra.Command{
		Use:   "set <book-id>",
		Short: "Set the worldview and embed it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			body, err := readText(cmd, text, file)
			if err != nil {
				return err
			}
			book, err := a.kit.Library.SaveWorldview(cmd.Context(), id, body)
			if err != nil {
				return err
			}
			// 同步向量化后重新读取状态
			_, status, err := a.kit.Library.GetWorldview(cmd.Context(), book.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s worldview of book %d (%s)\n", success("saved"), book.ID, status.Label())
			return nil
		},
	}
	set.Flags().StringVar(&text, "text", "", "worldview text")
	set.Flags().StringVar(&file, "file", "", "read worldview from file")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <book-id>",
		Short: "Print the worldview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			text, status, err := a.kit.Library.GetWorldview(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if text == "" {
				fmt.Fprintln(out, faint("no worldview"))
				return nil
			}
			fmt.Fprintf(out, "%s\n%s\n", faint("["+status.Label()+"]"), text)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <book-id>",
		Short: "Delete the worldview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := a.kit.Library.DeleteWorldview(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s worldview of book %d\n", success("cleared"), id)
			return nil
		},
	})

	return cmd
}
