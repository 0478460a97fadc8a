package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"content-creator/internal/app"
	"content-creator/internal/backends/retrieval"
	"content-creator/internal/common/config"
	"content-creator/internal/common/database"
	"content-creator/internal/common/logger"
	"content-creator/internal/content/pipeline"
)

const (
	formatJSON     = "json"
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "content-cli",
		Short:         "Generate marketing content from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config YAML file (defaults to configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for diagnostics on stderr")

	cmd.AddCommand(newGenerateCmd(opts), newSeedCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, logger.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.NewStructured(o.logLevel, "console"), nil
}

type generateOptions struct {
	title       string
	description string
	tone        string
	language    string
	contentType string
	format      string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the content pipeline once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case formatJSON, formatHTML, formatMarkdown:
			default:
				return fmt.Errorf("unknown format %q (want json, html or markdown)", opts.format)
			}

			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := app.Build(ctx, cfg, log, app.OneShotOptions)
			if err != nil {
				return err
			}
			defer a.Close()

			doc := map[string]interface{}{"title": opts.title, "description": opts.description}
			if opts.tone != "" {
				doc["tone"] = opts.tone
			}
			if opts.language != "" {
				doc["language"] = opts.language
			}
			if opts.contentType != "" {
				doc["content_type"] = opts.contentType
			}

			out := a.Pipeline.Run(ctx, doc)
			return printOutcome(cmd.OutOrStdout(), out, opts.format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.title, "title", "", "Product or service title")
	f.StringVar(&opts.description, "description", "", "Product or service description")
	f.StringVar(&opts.tone, "tone", "", "Tone of voice (default professional)")
	f.StringVar(&opts.language, "language", "", "Output language (default en)")
	f.StringVar(&opts.contentType, "content-type", "", "Content type (default landing_page)")
	f.StringVar(&opts.format, "format", formatJSON, "Output format: json, html or markdown")
	return cmd
}

func printOutcome(w io.Writer, out pipeline.Outcome, format string) error {
	switch out.Kind {
	case pipeline.KindValidation:
		return fmt.Errorf("%s", pipeline.ValidationMessage)
	case pipeline.KindBackendFailure:
		return fmt.Errorf("generation failed: %s", out.Detail())
	}

	switch format {
	case formatHTML:
		_, err := fmt.Fprintln(w, out.Content.HTMLContent)
		return err
	case formatMarkdown:
		_, err := fmt.Fprint(w, out.Content.MarkdownContent)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Content)
	}
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Index the sample knowledge base into Elasticsearch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			if len(cfg.Database.Elasticsearch.GetAddresses()) == 0 {
				return fmt.Errorf("database.elasticsearch.url is required to seed")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}

			store := retrieval.NewElasticsearch(es.Client, cfg.Retrieval.Index)
			if err := store.Index(ctx, retrieval.SampleDocuments); err != nil {
				return err
			}
			log.Info("Sample documents indexed", map[string]interface{}{
				"index": cfg.Retrieval.Index,
				"count": len(retrieval.SampleDocuments),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents into %s\n", len(retrieval.SampleDocuments), cfg.Retrieval.Index)
			return nil
		},
	}
}
