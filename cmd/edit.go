package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/config"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/export"
	"github.com/ziadkadry99/onepage/internal/intent"
	"github.com/ziadkadry99/onepage/internal/projects"
	"github.com/ziadkadry99/onepage/internal/session"
)

const editHelp = `Type a message to talk to the copywriting assistant, or use a command:

  /hints                      suggested prompts
  /show                       print the page as text
  /json                       print the page document
  /set <path> <value>         replace a field, e.g. /set appInfo.tagline "Ship faster"
  /append <path> <value>      append to a list, e.g. /append tabs.overview.features {"title":"Sync"}
  /remove <path>              remove a list element, e.g. /remove media[1]
  /export [file.html]         copy the page to the clipboard, or write HTML to a file
  /save [name]                save the page as a project (requires onepage login)
  /quit                       leave the editor`

var editCmd = &cobra.Command{
	Use:   "edit [template-id | document.json]",
	Short: "Edit a page interactively",
	Long:  `Opens a chat-driven editing session on a template or saved page document. Without an argument a template picker is shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer logger.Sync()

		store, err := newCatalog(cfg)
		if err != nil {
			return err
		}

		var s *session.Session
		opts := newSessionOptions(cfg, logger)
		if len(args) == 1 {
			d, err := loadDocument(store, args[0])
			if err != nil {
				return err
			}
			s = session.FromDocument(d, opts)
		} else {
			tpl, err := pickTemplate(store)
			if err != nil {
				return err
			}
			s = session.New(tpl, opts)
		}

		r := &repl{
			cfg:     cfg,
			session: s,
			in:      bufio.NewScanner(cmd.InOrStdin()),
			out:     cmd.OutOrStdout(),
		}
		r.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		return r.run(cmd.Context())
	},
}

func pickTemplate(store *catalog.Store) (catalog.Template, error) {
	tpls := store.List()
	prompt := promptui.Select{
		Label: "Choose a template",
		Items: tpls,
		Templates: &promptui.SelectTemplates{
			Active:   `▸ {{ .Name | cyan }} ({{ .ID }})`,
			Inactive: `  {{ .Name }} ({{ .ID }})`,
			Selected: `✔ {{ .Name | green }}`,
			Details:  `{{ .Description }}`,
		},
		Searcher: func(input string, index int) bool {
			t := tpls[index]
			needle := strings.ToLower(input)
			return strings.Contains(strings.ToLower(t.Name), needle) || strings.Contains(t.ID, needle)
		},
	}
	i, _, err := prompt.Run()
	if err != nil {
		return catalog.Template{}, fmt.Errorf("template selection: %w", err)
	}
	return tpls[i], nil
}

type repl struct {
	cfg      *config.Config
	session  *session.Session
	in       *bufio.Scanner
	out      io.Writer
	renderer *glamour.TermRenderer
}

func (r *repl) run(ctx context.Context) error {
	for _, m := range r.session.Conversation() {
		r.say(m.Content)
	}
	fmt.Fprintln(r.out, "Type /help for commands.")

	for {
		fmt.Fprint(r.out, "\n> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			r.send(ctx, line)
			continue
		}

		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch name {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(r.out, editHelp)
		case "/hints":
			for _, h := range intent.Hints {
				fmt.Fprintf(r.out, "  %s\n", h)
			}
		case "/show":
			fmt.Fprintln(r.out, export.Document(r.session.Document()).Text)
		case "/json":
			b, err := json.MarshalIndent(r.session.Document(), "", "  ")
			if err != nil {
				r.fail(err)
				continue
			}
			fmt.Fprintln(r.out, string(b))
		case "/set", "/append", "/remove":
			p, err := parsePatchCommand(name, rest)
			if err == nil {
				err = r.session.Apply(p)
			}
			if err != nil {
				r.fail(err)
				continue
			}
			fmt.Fprintln(r.out, "Updated.")
		case "/export":
			r.export(rest)
		case "/save":
			r.save(ctx, rest)
		default:
			fmt.Fprintf(r.out, "Unknown command %s. Type /help for commands.\n", name)
		}
	}
}

func (r *repl) send(ctx context.Context, text string) {
	fmt.Fprintln(r.out, "…")
	turn, err := r.session.Send(ctx, text)
	if err != nil {
		r.fail(err)
		return
	}
	r.say(turn.Reply.Content)
	if turn.Mutated {
		fmt.Fprintln(r.out, "(page updated, /show to view)")
	}
}

func (r *repl) export(path string) {
	p := export.Document(r.session.Document())
	if path != "" {
		path = outputPath(r.cfg, path)
		if err := export.WriteHTMLFile(path, p); err != nil {
			r.fail(err)
			return
		}
		fmt.Fprintf(r.out, "HTML written to %s\n", path)
		return
	}
	if err := (export.SystemClipboard{}).Write(p); err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "Copied to the clipboard.")
}

func (r *repl) save(ctx context.Context, name string) {
	sc, err := signInContext(ctx, r.cfg)
	if err != nil {
		r.fail(err)
		return
	}
	u, ok := sc.Current()
	if !ok {
		fmt.Fprintln(r.out, "Sign in first with `onepage login`.")
		return
	}

	store, closeStore, err := openProjects(ctx, r.cfg, nil)
	if err != nil {
		r.fail(err)
		return
	}
	defer closeStore()

	p := projects.Project{Name: name, Data: r.session.Document(), OwnerCode: u.Code}
	id, err := store.Insert(ctx, p)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "Saved %q (%s)\n", projects.DefaultName(p), id)
}

// say prints an assistant message, rendered as markdown when possible.
func (r *repl) say(text string) {
	if r.renderer != nil {
		if out, err := r.renderer.Render(text); err == nil {
			fmt.Fprint(r.out, out)
			return
		}
	}
	fmt.Fprintln(r.out, text)
}

func (r *repl) fail(err error) {
	fmt.Fprintf(r.out, "Error: %v\n", err)
}

// parsePatchCommand turns "/set path value" style input into a patch. Values
// that are not valid JSON are taken as plain strings.
func parsePatchCommand(name, rest string) (document.Patch, error) {
	path, value, _ := strings.Cut(rest, " ")
	value = strings.TrimSpace(value)
	if path == "" {
		return document.Patch{}, fmt.Errorf("usage: %s <path> [value]", name)
	}

	switch name {
	case "/remove":
		return document.Remove(path), nil
	case "/set", "/append":
		if value == "" {
			return document.Patch{}, fmt.Errorf("usage: %s <path> <value>", name)
		}
		raw := json.RawMessage(value)
		if !json.Valid(raw) {
			b, err := json.Marshal(value)
			if err != nil {
				return document.Patch{}, err
			}
			raw = b
		}
		op := document.OpReplace
		if name == "/append" {
			op = document.OpAppend
		}
		return document.Patch{Op: op, Path: path, Value: raw}, nil
	default:
		return document.Patch{}, fmt.Errorf("unknown patch command %s", name)
	}
}

func init() {
	rootCmd.AddCommand(editCmd)
}
