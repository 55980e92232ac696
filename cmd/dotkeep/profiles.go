package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/profile"
	"github.com/arthur-debert/dotkeep/pkg/ui"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage named profiles",
}

var (
	profileDescription string
	profileSetDefault  bool
)

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		profiles, err := profile.LoadProfiles(a.fs, a.paths.ProfilesPath())
		if err != nil {
			return err
		}
		if err := profiles.Create(args[0], profileDescription); err != nil {
			return err
		}
		if profileSetDefault {
			if err := profiles.SetDefault(args[0]); err != nil {
				return err
			}
		}
		if err := profile.SaveProfiles(a.fs, a.paths.ProfilesPath(), profiles); err != nil {
			return err
		}
		fmt.Printf("created profile %s\n", args[0])
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile definition",
	Long: `Delete a profile definition. The profile's layer directory is left in
place; remove it by hand if its content is no longer wanted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		profiles, err := profile.LoadProfiles(a.fs, a.paths.ProfilesPath())
		if err != nil {
			return err
		}
		if err := profiles.Delete(args[0]); err != nil {
			return err
		}
		if err := profile.SaveProfiles(a.fs, a.paths.ProfilesPath(), profiles); err != nil {
			return err
		}
		if profile.ReadActiveProfile(a.fs, a.paths.ActiveProfilePath()) == args[0] {
			if err := profile.ClearActiveProfile(a.fs, a.paths.ActiveProfilePath()); err != nil {
				return err
			}
		}
		fmt.Printf("deleted profile %s\n", args[0])
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		profiles, err := profile.LoadProfiles(a.fs, a.paths.ProfilesPath())
		if err != nil {
			return err
		}
		rows := make([]ui.ProfileRow, 0, len(profiles.Profiles))
		for _, name := range profiles.Names() {
			def := profiles.Profiles[name]
			rows = append(rows, ui.ProfileRow{
				Name:        name,
				Description: def.Description,
				Default:     def.Default,
				Active:      name == a.ctx.Profile,
			})
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}
		return renderer.ProfileList(rows)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolution context for this invocation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}
		state := map[string]string{
			"profile": a.ctx.Profile,
			"machine": a.ctx.Machine,
		}
		if flagFormat == "json" {
			return renderer.JSON(state)
		}
		fmt.Println(a.ctx.String())
		return nil
	},
}

var profileUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Convert a pre-1.0 profiles document to the current schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		report, err := profile.Upgrade(a.fs, a.paths)
		if err != nil {
			return err
		}
		fmt.Printf("converted %d profile(s), moved %d layer dir(s), skipped %d\n",
			len(report.Converted), len(report.MovedDirs), len(report.Skipped))
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch the active profile",
	Long: `Switch the active profile. "common" or "none" clears the active
profile so resolution uses the common layer only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		name := args[0]
		if name == "common" || name == "none" {
			if err := profile.ClearActiveProfile(a.fs, a.paths.ActiveProfilePath()); err != nil {
				return err
			}
			fmt.Println("active profile cleared")
			return nil
		}
		profiles, err := profile.LoadProfiles(a.fs, a.paths.ProfilesPath())
		if err != nil {
			return err
		}
		if !profiles.Exists(name) {
			return errors.Newf(errors.ErrNotFound,
				"no profile %q, create it with dotkeep profile create", name)
		}
		if err := profile.SetActiveProfile(a.fs, a.paths.ActiveProfilePath(), name); err != nil {
			return err
		}
		fmt.Printf("active profile: %s\n", name)
		return nil
	},
}

func init() {
	profileCreateCmd.Flags().StringVar(&profileDescription, "description", "", "Free-text description")
	profileCreateCmd.Flags().BoolVar(&profileSetDefault, "default", false, "Make this the default profile")

	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpgradeCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(useCmd)
}
