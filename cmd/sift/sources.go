package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"feedsift/internal/config"
)

func sourcesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Validate the sources file and list sources by group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := config.LoadSources(opts.path())
			if err != nil {
				return err
			}

			pipelineCfg, err := config.LoadPipelineConfig()
			if err != nil {
				return err
			}
			defaultLimit := sf.ItemLimit(pipelineCfg.DefaultItemLimit)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, g := range sf.Groups {
				schedule := g.Schedule
				if schedule == "" {
					schedule = "on demand"
				}
				_, _ = fmt.Fprintf(tw, "[%s]\t%s\n", g.Name, schedule)
				for _, src := range sf.SourcesForGroup(g.Name) {
					detail := "-"
					if src.DetailPageEnabled() {
						detail = "detail:" + strings.Join(src.DetailPage.Selectors, ",")
						if src.DetailPage.Readability {
							detail += " readability"
						}
					}
					_, _ = fmt.Fprintf(tw, "  %s\t%s\tlimit=%d\t%s\n", src.Name, src.URL, src.Limit(defaultLimit), detail)
				}
			}
			return tw.Flush()
		},
	}
}
