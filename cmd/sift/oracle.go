package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"feedsift/internal/app"
	"feedsift/internal/config"
	"feedsift/internal/utils/text"
)

func classifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "classify <title>",
		Short:   "Ask the classifier whether a headline would be kept",
		Example: `  sift classify "Chipmaker opens new fab in Arizona"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aiCfg, err := config.LoadAIConfig()
			if err != nil {
				return err
			}
			classifier, _, err := app.BuildOracles(aiCfg, opts.logger())
			if err != nil {
				return err
			}

			result := classifier.Classify(cmd.Context(), strings.Join(args, " "))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "keep=%t category=%s\n", result.Keep, result.Category)
			return err
		},
	}
}

func summarizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Condense text read from stdin",
		Long:  "Reads an article body from stdin and prints the summarizer's output. On oracle failure the input is printed unchanged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			content := strings.TrimSpace(string(input))
			if content == "" {
				return errors.New("nothing to summarize on stdin")
			}

			aiCfg, err := config.LoadAIConfig()
			if err != nil {
				return err
			}
			_, summarizer, err := app.BuildOracles(aiCfg, opts.logger())
			if err != nil {
				return err
			}

			summary := summarizer.Summarize(cmd.Context(), content)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, summary)
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d -> %d runes\n", text.CountRunes(content), text.CountRunes(summary))
			return err
		},
	}
}
