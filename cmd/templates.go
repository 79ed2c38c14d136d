package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/onepage/internal/catalog"
)

var templatesSearch string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the page templates",
	Long:  `Lists the catalog templates as cards with their conversion score, category and leading tags. Use --search to fuzzy-match by name, ID or tag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := newCatalog(cfg)
		if err != nil {
			return err
		}

		tpls := store.Search(templatesSearch)
		if len(tpls) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No templates match %q.\n", templatesSearch)
			return nil
		}
		printTemplateCards(cmd.OutOrStdout(), tpls)
		return nil
	},
}

// printTemplateCards writes one card per template.
func printTemplateCards(w io.Writer, tpls []catalog.Template) {
	for i, t := range tpls {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  [%s]  转化分: %d\n", t.Name, t.Category.Label(), t.ConversionScore)
		fmt.Fprintf(w, "  id: %s\n", t.ID)
		if t.Description != "" {
			fmt.Fprintf(w, "  %s\n", t.Description)
		}
		if tags := cardTags(t.Tags); len(tags) > 0 {
			fmt.Fprintf(w, "  #%s\n", strings.Join(tags, " #"))
		}
	}
}

// cardTags returns the tags shown on a card: the first two.
func cardTags(tags []string) []string {
	if len(tags) > 2 {
		return tags[:2]
	}
	return tags
}

func init() {
	templatesCmd.Flags().StringVarP(&templatesSearch, "search", "s", "", "fuzzy search query")
	rootCmd.AddCommand(templatesCmd)
}
