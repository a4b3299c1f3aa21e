package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cons/internal/hierarchy"
	"cons/internal/llmclient"
	"cons/internal/model"
)

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "manage generic/partitive tag relationships",
}

var hierarchySuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "classify relationships among in-use tags and persist confident ones as edges",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		client := llmclient.NewHTTPClient(effectiveLLMHost())
		suggester := hierarchy.New(client)

		suggestions, err := hierarchy.RunOnce(context.Background(), svc, suggester, effectiveLLMModel())
		if err != nil {
			return fmt.Errorf("hierarchy suggest: %w", err)
		}

		for _, s := range suggestions {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%.2f)\n", s.SourceTag, relationVerb(s.HierarchyType), s.TargetTag, s.Confidence)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d relationship(s) classified\n", len(suggestions))
		return nil
	},
}

func relationVerb(t model.HierarchyType) string {
	switch t {
	case model.HierarchyGeneric:
		return "is-a"
	case model.HierarchyPartitive:
		return "part-of"
	default:
		return string(t)
	}
}

func init() {
	hierarchyCmd.AddCommand(hierarchySuggestCmd)
}
