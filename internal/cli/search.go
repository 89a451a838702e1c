package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/workflow/node"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		query    string
		mode     string
		keywords []string
		asJSON   bool
		opts     retrieval.SearchOptions
	)

	cmd := &cobra.Command{
		Use:   "search <book-id>",
		Short: "Preview what retrieval finds for a query",
		Long: `Run retrieval against one book and print the matched worldview and
characters.

Modes: hybrid (default), vector, literal, keyword.

Examples:
  novelctl search 1 -q "Anna 在哪里"
  novelctl search 1 -q "铁匠" --mode literal
  novelctl search 1 -q "云海" --mode keyword -k 云海 -k 浮空岛 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if _, err := a.kit.Library.GetBook(cmd.Context(), bookID); err != nil {
				return err
			}

			res, err := a.kit.Querier.Query(cmd.Context(), retrieval.QueryRequest{
				BookID:   bookID,
				Text:     query,
				Mode:     mode,
				Keywords: keywords,
				Options:  opts,
				AIConfig: a.kit.AIConfig,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintf(out, "%s %s", faint("mode:"), res.Mode)
			if len(res.Keywords) > 0 {
				fmt.Fprintf(out, "  %s %s", faint("keywords:"), strings.Join(res.Keywords, ", "))
			}
			fmt.Fprintln(out)

			r := res.Result
			if r.Worldview != "" {
				fmt.Fprintf(out, "\n%s %s\n%s\n", accent("[世界观]"),
					faint(entity.FormatSimilarity(r.WorldviewSimilarity)), node.Excerpt(r.Worldview, 120))
			}
			if len(r.Characters) == 0 {
				fmt.Fprintf(out, "\n%s\n", warn("no characters matched"))
				return nil
			}
			fmt.Fprintf(out, "\n%s\n", accent("[相关角色]"))
			for _, c := range r.Characters {
				fmt.Fprintf(out, "  %s  %s  %s\n", accent(c.Name),
					faint(entity.FormatSimilarity(c.Similarity)), node.Excerpt(c.Description, 60))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&query, "query", "q", "", "search query (required)")
	f.StringVarP(&mode, "mode", "m", retrieval.ModeHybrid, "hybrid | vector | literal | keyword")
	f.StringSliceVarP(&keywords, "keyword", "k", nil, "keywords to use instead of extracting them")
	f.BoolVar(&asJSON, "json", false, "output as JSON")
	f.Float64Var(&opts.WorldviewThreshold, "worldview-threshold", 0, "worldview similarity threshold")
	f.Float64Var(&opts.CharacterThreshold, "character-threshold", 0, "character similarity threshold")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}
