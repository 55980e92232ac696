package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/system"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull and push the dotkeep directory via git",
	Long: `Sync the dotkeep directory with its git remote: pull with rebase,
then push. Committing is left to you; dotkeep never rewrites history.
Initializes a repository on first use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		git := system.NewGit(system.NewRunner())
		root := a.paths.Root()

		if _, err := os.Stat(root + "/.git"); os.IsNotExist(err) {
			if dryRun {
				fmt.Println("would initialize a git repository in", root)
				return nil
			}
			if err := git.Do(types.GitInit, root); err != nil {
				return err
			}
			fmt.Println("initialized git repository, add a remote and re-run dotkeep sync")
			return nil
		}

		if dryRun {
			fmt.Println("would pull and push", root)
			return nil
		}
		if err := git.Do(types.GitPull, root); err != nil {
			return err
		}
		if err := git.Do(types.GitPush, root); err != nil {
			return err
		}
		fmt.Println("synced")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
