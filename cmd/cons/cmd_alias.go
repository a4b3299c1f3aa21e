package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cons/internal/alias"
	"cons/internal/model"
)

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "manage tag aliases",
}

var aliasAddCmd = &cobra.Command{
	Use:   "add <alias> <canonical-tag>",
	Short: "point alias at an existing canonical tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		tag, err := svc.Store().TagByName(args[1])
		if err != nil {
			return fmt.Errorf("alias add: %w", err)
		}

		resolver := alias.New(svc.Store())
		if err := resolver.Create(args[0], tag.ID, model.SourceUser, 1.0, nil); err != nil {
			return fmt.Errorf("alias add: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "alias %q -> %s\n", args[0], tag.Name)
		return nil
	},
}

var aliasListCmd = &cobra.Command{
	Use:   "list",
	Short: "list every alias and its canonical tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		resolver := alias.New(svc.Store())
		aliases, err := resolver.List()
		if err != nil {
			return fmt.Errorf("alias list: %w", err)
		}
		for _, a := range aliases {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %.2f)\n", a.Alias, a.CanonicalName, a.Source, a.Confidence)
		}
		return nil
	},
}

var aliasRemoveCmd = &cobra.Command{
	Use:   "remove <alias>",
	Short: "remove an alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		resolver := alias.New(svc.Store())
		if err := resolver.Remove(args[0]); err != nil {
			return fmt.Errorf("alias remove: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed alias %q\n", args[0])
		return nil
	},
}

func init() {
	aliasCmd.AddCommand(aliasAddCmd, aliasListCmd, aliasRemoveCmd)
}
