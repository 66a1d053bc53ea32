package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"issuepreview/internal/content"
	"issuepreview/internal/issuetemplate"
	"issuepreview/internal/markdown"
	"issuepreview/internal/preview"
)

const watchDebounce = 100 * time.Millisecond

type renderOptions struct {
	fragment bool
	out      string
	engine   string
	title    string
	watch    bool
}

// NewRootCmd 构建 issuepreview 命令树。
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "issuepreview",
		Short: "Preview GitHub issue form templates as HTML",
		Long: `issuepreview renders GitHub issue form templates (YAML) into a static
HTML preview of the form a reporter would see.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRenderCmd())
	root.AddCommand(newListCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a template file to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, ok := markdown.New(markdown.Engine(opts.engine))
			if !ok {
				return fmt.Errorf("unknown markdown engine %q", opts.engine)
			}
			renderer := issuetemplate.NewRenderer(issuetemplate.WithMarkdown(conv))

			path := args[0]
			if err := renderTo(cmd.OutOrStdout(), path, renderer, opts); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w, err := newFileWatcher(path)
			if err != nil {
				return err
			}
			defer w.Close()

			slog.Info("watching template", "path", path)
			return w.Run(ctx, watchDebounce, func() {
				if err := renderTo(cmd.OutOrStdout(), path, renderer, opts); err != nil {
					slog.Error("re-render", "path", path, "error", err)
					return
				}
				slog.Info("re-rendered", "path", path)
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.fragment, "fragment", false, "print the HTML fragment without the page shell")
	flags.StringVarP(&opts.out, "out", "o", "", "write HTML to this file instead of stdout")
	flags.StringVar(&opts.engine, "markdown", os.Getenv("MARKDOWN_ENGINE"), "markdown engine: lite or goldmark")
	flags.StringVar(&opts.title, "title", "", "page title (defaults to the file name)")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-render whenever the file changes")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [DIR]",
		Short: "List issue templates in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := os.Getenv("TEMPLATE_DIR")
			if dir == "" {
				dir = ".github/ISSUE_TEMPLATE"
			}
			if len(args) == 1 {
				dir = args[0]
			}

			store, err := content.NewStore(dir)
			if err != nil {
				return err
			}
			entries, err := store.List()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, entry := range entries {
				sum := content.Summarize(entry)
				name := sum.Name
				if sum.Err != nil {
					name = "error: " + sum.Err.Error()
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", entry.Slug, name, sum.Fields)
			}
			return tw.Flush()
		},
	}
}

// renderTo 渲染 path，结果写入 opts.out；未指定输出文件时写入 w。
func renderTo(w io.Writer, path string, r *issuetemplate.Renderer, opts renderOptions) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	html := r.RenderSource(string(raw), issuetemplate.ParseYAML)
	if !opts.fragment {
		title := opts.title
		if title == "" {
			title = fmt.Sprintf("%s · %s", filepath.Base(path), preview.DefaultTitle)
		}
		html, err = preview.Page(html, preview.Options{Title: title})
		if err != nil {
			return err
		}
	}

	if opts.out == "" {
		_, err = io.WriteString(w, html)
		return err
	}
	if err := os.WriteFile(opts.out, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
