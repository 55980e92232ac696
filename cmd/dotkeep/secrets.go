package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage encrypted tracked files",
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked secrets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		reg, err := a.secretStore().Peek()
		if err != nil {
			return err
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}
		return renderer.SecretList(reg.List())
	},
}

var secretsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a tracked secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		var enabled bool
		if err := a.secretStore().Mutate(func(reg *registry.Registry[types.SecretEntry]) error {
			entry, ok := reg.Get(args[0])
			if !ok {
				return errors.Newf(errors.ErrNotFound, "no entry %q", args[0])
			}
			enabled = !entry.IsEnabled()
			return reg.Toggle(args[0], enabled)
		}); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Printf("%s %s\n", state, args[0])
		return nil
	},
}

func init() {
	secretsCmd.AddCommand(secretsListCmd)
	secretsCmd.AddCommand(secretsToggleCmd)
	rootCmd.AddCommand(secretsCmd)
}
