package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"z-novel-writer/internal/workflow/node"
)

func newCharacterCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Manage characters",
	}

	var desc, file string
	add := &cobra.Command{
		Use:   "add <book-id> <name>",
		Short: "Add a character and embed its description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			body, err := readText(cmd, desc, file)
			if err != nil {
				return err
			}
			c, err := a.kit.Library.SaveCharacter(cmd.Context(), bookID, args[1], body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s character %d %s\n", success("created"), c.ID, accent(c.Name))
			return nil
		},
	}
	add.Flags().StringVar(&desc, "desc", "", "character description")
	add.Flags().StringVar(&file, "file", "", "read description from file")
	cmd.AddCommand(add)

	var editDesc, editFile string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a character's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "character")
			if err != nil {
				return err
			}
			body, err := readText(cmd, editDesc, editFile)
			if err != nil {
				return err
			}
			c, err := a.kit.Library.UpdateCharacter(cmd.Context(), id, body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s character %d %s\n", success("updated"), c.ID, accent(c.Name))
			return nil
		},
	}
	edit.Flags().StringVar(&editDesc, "desc", "", "new description")
	edit.Flags().StringVar(&editFile, "file", "", "read description from file")
	cmd.AddCommand(edit)

	cmd.AddCommand(&cobra.Command{
		Use:   "list <book-id>",
		Short: "List a book's characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			chars, err := a.kit.Library.ListCharacters(cmd.Context(), bookID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(chars) == 0 {
				fmt.Fprintln(out, faint("no characters"))
				return nil
			}
			for _, c := range chars {
				fmt.Fprintf(out, "%4d  %s  %s  %s\n", c.ID, accent(c.Name),
					node.Excerpt(c.Description, 40), faint(c.DescriptionEmbedding.Status.Label()))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "character")
			if err != nil {
				return err
			}
			if err := a.kit.Library.DeleteCharacter(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s character %d\n", success("deleted"), id)
			return nil
		},
	})

	return cmd
}
