package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/export"
)

var (
	exportHTML      string
	exportText      bool
	exportClipboard bool
)

var exportCmd = &cobra.Command{
	Use:   "export <template-id | document.json>",
	Short: "Export a page as inline-styled HTML",
	Long: `Renders a template, or a page document saved as JSON, to self-contained
HTML with every style inlined, ready to paste into a rich-text editor.

By default the HTML is printed to stdout. --clipboard puts the plain-text
version on the system clipboard; combine it with --html to also keep the
markup in a file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := newCatalog(cfg)
		if err != nil {
			return err
		}
		d, err := loadDocument(store, args[0])
		if err != nil {
			return err
		}

		p := export.Document(d)
		out := cmd.OutOrStdout()

		if exportHTML != "" {
			path := outputPath(cfg, exportHTML)
			if exportClipboard {
				if err := (export.SystemClipboard{HTMLPath: path}).Write(p); err != nil {
					return err
				}
				fmt.Fprintf(out, "Copied text to the clipboard; HTML written to %s\n", path)
				return nil
			}
			if err := export.WriteHTMLFile(path, p); err != nil {
				return err
			}
			fmt.Fprintf(out, "HTML written to %s\n", path)
			return nil
		}

		if exportClipboard {
			if err := (export.SystemClipboard{}).Write(p); err != nil {
				return err
			}
			fmt.Fprintln(out, "Copied text to the clipboard")
			return nil
		}

		if exportText {
			fmt.Fprintln(out, p.Text)
			return nil
		}
		fmt.Fprintln(out, p.HTML)
		return nil
	},
}

// loadDocument resolves ref as a JSON document file when one exists at that
// path, and as a template ID otherwise.
func loadDocument(store *catalog.Store, ref string) (document.Document, error) {
	if data, err := os.ReadFile(ref); err == nil {
		d, err := document.Validate(data)
		if err != nil {
			return document.Document{}, fmt.Errorf("%s: %w", ref, err)
		}
		return document.Load(d), nil
	}
	tpl, err := store.Get(ref)
	if err != nil {
		return document.Document{}, err
	}
	return tpl.NewDocument(), nil
}

func init() {
	exportCmd.Flags().StringVar(&exportHTML, "html", "", "write the HTML to this file")
	exportCmd.Flags().BoolVar(&exportText, "text", false, "print the plain-text version instead of HTML")
	exportCmd.Flags().BoolVar(&exportClipboard, "clipboard", false, "copy the plain-text version to the system clipboard")
	rootCmd.AddCommand(exportCmd)
}
