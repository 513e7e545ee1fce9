package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"feedsift/internal/app"
	"feedsift/internal/config"
	"feedsift/internal/repository"
	"feedsift/internal/usecase/article"
)

func recordsCmd(opts *rootOptions) *cobra.Command {
	records := &cobra.Command{
		Use:   "records",
		Short: "Inspect stored records",
	}

	withStore := func(cmd *cobra.Command, fn func(repo repository.NewsRepository, collection string) error) error {
		storeCfg, err := config.LoadStoreConfig()
		if err != nil {
			return err
		}
		pipelineCfg, err := config.LoadPipelineConfig()
		if err != nil {
			return err
		}
		opts.logger()

		repo, db, err := app.OpenStore(cmd.Context(), storeCfg)
		if err != nil {
			return err
		}
		err = fn(repo, pipelineCfg.Collection)
		if db != nil {
			err = errors.Join(err, db.Close())
		}
		return err
	}

	records.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List record keys in the configured collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(repo repository.NewsRepository, collection string) error {
				keys, err := repo.List(cmd.Context(), collection)
				if err != nil {
					return err
				}
				for _, k := range keys {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	})

	records.AddCommand(&cobra.Command{
		Use:   "show <key-or-title>",
		Short: "Print one stored record",
		Long:  "Prints the record stored under the given key. A title is accepted too and mapped to its key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(repo repository.NewsRepository, collection string) error {
				content, err := repo.Get(cmd.Context(), collection, args[0])
				if errors.Is(err, repository.ErrNotFound) {
					if key := article.DeriveKey(args[0]); key != args[0] {
						content, err = repo.Get(cmd.Context(), collection, key)
					}
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
				return err
			})
		},
	})

	return records
}
