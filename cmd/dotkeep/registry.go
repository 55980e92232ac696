package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage tracked configuration files",
}

var (
	addName        string
	addSource      string
	addTarget      string
	addTargetKind  string
	addCategory    string
	addDescription string
	addFileFormat  string
)

var registryAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Track a new configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		category, err := types.ParseCategory(addCategory)
		if err != nil {
			return errors.Wrap(err, errors.ErrInvalidInput, "invalid --category")
		}
		target, err := parseTarget(addTargetKind, addTarget)
		if err != nil {
			return err
		}
		entry := types.ConfigEntry{
			Name:        addName,
			SourcePath:  addSource,
			TargetPath:  target,
			Category:    category,
			Enabled:     true,
			Description: addDescription,
			Format:      addFileFormat,
		}
		if err := a.configStore().Mutate(func(reg *registry.Registry[types.ConfigEntry]) error {
			return reg.Add(args[0], entry)
		}); err != nil {
			return err
		}
		fmt.Printf("added %s\n", args[0])
		return nil
	},
}

func parseTarget(kind, path string) (types.TargetPath, error) {
	switch types.TargetKind(kind) {
	case types.TargetHome:
		return types.HomeTarget(path), nil
	case types.TargetConfig:
		return types.ConfigTarget(path), nil
	case types.TargetData:
		return types.DataTarget(path), nil
	case types.TargetAbsolute:
		return types.AbsoluteTarget(path), nil
	}
	return types.TargetPath{}, errors.Newf(errors.ErrInvalidInput,
		"unknown target kind %q (valid: home, config, data, absolute)", kind)
}

var registryRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Stop tracking a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.configStore().Mutate(func(reg *registry.Registry[types.ConfigEntry]) error {
			_, err := reg.Remove(args[0])
			return err
		}); err != nil {
			return err
		}
		fmt.Printf("removed %s (backed up copies stay in place)\n", args[0])
		return nil
	},
}

var registryToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a tracked configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		var enabled bool
		if err := a.configStore().Mutate(func(reg *registry.Registry[types.ConfigEntry]) error {
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

var (
	listEnabledOnly bool
	listCategory    string
)

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked configuration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		reg, err := a.configStore().Peek()
		if err != nil {
			return err
		}
		var filters []registry.Filter[types.ConfigEntry]
		if listEnabledOnly {
			filters = append(filters, registry.EnabledFilter[types.ConfigEntry](true))
		}
		if listCategory != "" {
			category, err := types.ParseCategory(listCategory)
			if err != nil {
				return errors.Wrap(err, errors.ErrInvalidInput, "invalid --category")
			}
			filters = append(filters, registry.CategoryFilter(category))
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}
		return renderer.ConfigList(reg.List(filters...))
	},
}

func init() {
	registryAddCmd.Flags().StringVar(&addName, "name", "", "Display name")
	registryAddCmd.Flags().StringVar(&addSource, "source", "", "Layer-relative storage path")
	registryAddCmd.Flags().StringVar(&addTarget, "target", "", "Target path on the machine")
	registryAddCmd.Flags().StringVar(&addTargetKind, "target-kind", "home", "Target base (home, config, data, absolute)")
	registryAddCmd.Flags().StringVar(&addCategory, "category", "application", "Category (shell, editor, terminal, system, development, application)")
	registryAddCmd.Flags().StringVar(&addDescription, "description", "", "Free-text description")
	registryAddCmd.Flags().StringVar(&addFileFormat, "file-format", "", "Structured format validated by dotkeep validate (json, yaml, toml)")
	_ = registryAddCmd.MarkFlagRequired("name")
	_ = registryAddCmd.MarkFlagRequired("source")
	_ = registryAddCmd.MarkFlagRequired("target")

	registryListCmd.Flags().BoolVar(&listEnabledOnly, "enabled", false, "Show only enabled entries")
	registryListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")

	registryCmd.AddCommand(registryAddCmd)
	registryCmd.AddCommand(registryRemoveCmd)
	registryCmd.AddCommand(registryToggleCmd)
	registryCmd.AddCommand(registryListCmd)
	rootCmd.AddCommand(registryCmd)
}
