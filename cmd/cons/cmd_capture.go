package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cons/internal/alias"
	"cons/internal/autotag"
	"cons/internal/capture"
	"cons/internal/enhance"
	"cons/internal/llmclient"
)

var captureTags []string

var captureCmd = &cobra.Command{
	Use:   "capture <content>",
	Short: "capture a note, best-effort enhanced and auto-tagged",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		client := llmclient.NewHTTPClient(effectiveLLMHost())
		pipeline := capture.New(svc, autotag.New(client), enhance.New(client), alias.New(svc.Store()), effectiveLLMModel())

		id, err := pipeline.Capture(context.Background(), args[0], splitTags(captureTags))
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "captured note %d\n", int64(id))
		return nil
	},
}

func init() {
	captureCmd.Flags().StringSliceVarP(&captureTags, "tag", "t", nil, "manual tag (repeatable)")
}

// splitTags accepts both repeated --tag flags and a single
// comma-separated value, since cobra's StringSliceVar already
// handles both; this just drops empties left by a trailing comma.
func splitTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
