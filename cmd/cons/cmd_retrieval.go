package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cons/internal/config"
	"cons/internal/model"
	"cons/internal/search"
)

var (
	listLimit int
	listTags  []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list notes, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		notes, err := svc.ListNotes(listLimit, listTags)
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		printNotes(cmd, notes)
		return nil
	},
}

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "dual-channel search: full text fused with spreading activation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(args[0]) == "" {
			return model.ErrEmptyQuery
		}

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ds := search.NewDualSearch(svc.Store())
		results, meta, err := ds.Search(context.Background(), args[0], searchLimit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if meta.GraphSkipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "graph channel skipped: %s\n", meta.SkipReason)
		}
		for _, r := range results {
			both := ""
			if r.FoundByBoth {
				both = " [fts+graph]"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f%s\t%d\t%s\n", r.FinalScore, both, int64(r.Note.ID), truncate(r.Note.Content, 80))
		}
		return nil
	},
}

var graphSearchLimit int

var graphSearchCmd = &cobra.Command{
	Use:   "graph-search <query>",
	Short: "search using only the spreading-activation channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(args[0]) == "" {
			return model.ErrEmptyQuery
		}

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		graph := search.NewGraphSearch(svc.Store())
		seeds, err := graph.SeedTags(strings.Fields(args[0]))
		if err != nil {
			return fmt.Errorf("graph-search: seed tags: %w", err)
		}
		if len(seeds) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no seed tags found for query")
			return nil
		}

		spreading := config.Spreading()
		activation, _, err := graph.Activate(seeds, spreading.Decay, spreading.Threshold, spreading.MaxHops)
		if err != nil {
			return fmt.Errorf("graph-search: activate: %w", err)
		}
		hits, err := graph.ScoreNotes(activation)
		if err != nil {
			return fmt.Errorf("graph-search: score notes: %w", err)
		}

		if graphSearchLimit > 0 && len(hits) > graphSearchLimit {
			hits = hits[:graphSearchLimit]
		}
		for _, h := range hits {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f\t%d\t%s\n", h.Relevance, int64(h.Note.ID), truncate(h.Note.Content, 80))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum notes to list (0 = unbounded)")
	listCmd.Flags().StringSliceVarP(&listTags, "tag", "t", nil, "filter to notes carrying every given tag")

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum results (0 = unbounded)")
	graphSearchCmd.Flags().IntVarP(&graphSearchLimit, "limit", "n", 20, "maximum results (0 = unbounded)")
}

func printNotes(cmd *cobra.Command, notes []*model.Note) {
	for _, n := range notes {
		tags := make([]string, 0, len(n.Assignments))
		for _, a := range n.Assignments {
			tags = append(tags, a.TagName)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t[%s]\t%s\n", int64(n.ID), strings.Join(tags, ","), truncate(n.Content, 80))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
