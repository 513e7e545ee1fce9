package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"feedsift/internal/app"
	"feedsift/internal/config"
	"feedsift/internal/domain/entity"
	"feedsift/internal/utils/text"
)

func peekCmd(opts *rootOptions) *cobra.Command {
	var showBody bool

	cmd := &cobra.Command{
		Use:   "peek <source-name>",
		Short: "Fetch one source and show how each item's content resolves",
		Long:  "Fetches and resolves the items of one source without classifying, condensing or storing them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			ctx := cmd.Context()

			sf, err := config.LoadSources(opts.path())
			if err != nil {
				return err
			}
			src := findSource(sf, args[0])
			if src == nil {
				return fmt.Errorf("no source named %q", args[0])
			}

			pipelineCfg, err := config.LoadPipelineConfig()
			if err != nil {
				return err
			}

			items, err := app.BuildFetcher(logger).Fetch(ctx, src.URL, src.Format)
			if err != nil {
				return err
			}
			if limit := src.Limit(sf.ItemLimit(pipelineCfg.DefaultItemLimit)); len(items) > limit {
				items = items[:limit]
			}

			resolver := app.BuildResolver(pipelineCfg, logger)
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, item := range items {
				content := resolver.Resolve(ctx, item, src)
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d runes\n", item.Title, content.Source, text.CountRunes(content.Body))
				if showBody {
					_ = tw.Flush()
					_, _ = fmt.Fprintf(out, "%s\n\n", content.Body)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&showBody, "body", false, "print each resolved body")
	return cmd
}

func findSource(sf *config.SourcesFile, name string) *entity.FeedSource {
	for i := range sf.Sources {
		if sf.Sources[i].Name == name {
			return &sf.Sources[i]
		}
	}
	return nil
}
