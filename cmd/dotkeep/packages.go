package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Manage package-manager list snapshots",
}

var (
	pkgName        string
	pkgCommand     string
	pkgArgs        []string
	pkgOutput      string
	pkgPlatforms   []string
	pkgDescription string
)

var packagesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Track a new package manager",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		platforms := make([]types.Platform, 0, len(pkgPlatforms))
		for _, p := range pkgPlatforms {
			switch platform := types.Platform(p); platform {
			case types.PlatformMacOS, types.PlatformLinux, types.PlatformWindows:
				platforms = append(platforms, platform)
			default:
				return errors.Newf(errors.ErrInvalidInput,
					"unknown platform %q (valid: macos, linux, windows)", p)
			}
		}
		entry := types.PackageEntry{
			Name:        pkgName,
			Command:     pkgCommand,
			Args:        pkgArgs,
			OutputFile:  pkgOutput,
			Enabled:     true,
			Description: pkgDescription,
			Platforms:   platforms,
		}
		if err := a.packageStore().Mutate(func(reg *registry.Registry[types.PackageEntry]) error {
			return reg.Add(args[0], entry)
		}); err != nil {
			return err
		}
		fmt.Printf("added %s\n", args[0])
		return nil
	},
}

var packagesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Stop tracking a package manager",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.packageStore().Mutate(func(reg *registry.Registry[types.PackageEntry]) error {
			_, err := reg.Remove(args[0])
			return err
		}); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

var packagesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a package manager snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		var enabled bool
		if err := a.packageStore().Mutate(func(reg *registry.Registry[types.PackageEntry]) error {
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

var pkgListEnabledOnly bool

var packagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked package managers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		reg, err := a.packageStore().Peek()
		if err != nil {
			return err
		}
		var filters []registry.Filter[types.PackageEntry]
		if pkgListEnabledOnly {
			filters = append(filters, registry.EnabledFilter[types.PackageEntry](true))
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}
		return renderer.PackageList(reg.List(filters...))
	},
}

func init() {
	packagesAddCmd.Flags().StringVar(&pkgName, "name", "", "Display name")
	packagesAddCmd.Flags().StringVar(&pkgCommand, "command", "", "Command that prints the installed list")
	packagesAddCmd.Flags().StringSliceVar(&pkgArgs, "args", nil, "Arguments for the command")
	packagesAddCmd.Flags().StringVar(&pkgOutput, "output", "", "File under backup/packages/ to write")
	packagesAddCmd.Flags().StringSliceVar(&pkgPlatforms, "platforms", nil, "Limit to platforms (macos, linux, windows)")
	packagesAddCmd.Flags().StringVar(&pkgDescription, "description", "", "Free-text description")
	_ = packagesAddCmd.MarkFlagRequired("name")
	_ = packagesAddCmd.MarkFlagRequired("command")
	_ = packagesAddCmd.MarkFlagRequired("output")

	packagesListCmd.Flags().BoolVar(&pkgListEnabledOnly, "enabled", false, "Show only enabled entries")

	packagesCmd.AddCommand(packagesAddCmd)
	packagesCmd.AddCommand(packagesRemoveCmd)
	packagesCmd.AddCommand(packagesToggleCmd)
	packagesCmd.AddCommand(packagesListCmd)
	rootCmd.AddCommand(packagesCmd)
}
