package registry

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotkeep/pkg/types"
)

// DefaultConfigs returns the stock configs registry written on first use.
func DefaultConfigs() *Registry[types.ConfigEntry] {
	reg := New[types.ConfigEntry]()

	_ = reg.Add("zshrc", types.ConfigEntry{
		Name:        "Zsh Configuration",
		SourcePath:  ".zshrc",
		TargetPath:  types.HomeTarget(".zshrc"),
		Category:    types.CategoryShell,
		Enabled:     true,
		Description: "Main Zsh shell configuration file",
	})
	_ = reg.Add("vimrc", types.ConfigEntry{
		Name:        "Vim Configuration",
		SourcePath:  ".vimrc",
		TargetPath:  types.HomeTarget(".vimrc"),
		Category:    types.CategoryEditor,
		Enabled:     true,
		Description: "Vim editor configuration",
	})
	_ = reg.Add("gitconfig", types.ConfigEntry{
		Name:        "Git Configuration",
		SourcePath:  ".gitconfig",
		TargetPath:  types.HomeTarget(".gitconfig"),
		Category:    types.CategoryDevelopment,
		Enabled:     true,
		Description: "Global git configuration",
	})
	_ = reg.Add("vscode_settings", types.ConfigEntry{
		Name:        "VSCode Settings",
		SourcePath:  "vscode/settings.json",
		TargetPath:  types.DataTarget("Code/User/settings.json"),
		Category:    types.CategoryEditor,
		Enabled:     true,
		Description: "Visual Studio Code user settings",
		Format:      "json",
	})
	_ = reg.Add("vscode_keybindings", types.ConfigEntry{
		Name:        "VSCode Keybindings",
		SourcePath:  "vscode/keybindings.json",
		TargetPath:  types.DataTarget("Code/User/keybindings.json"),
		Category:    types.CategoryEditor,
		Enabled:     true,
		Description: "Visual Studio Code keybindings",
		Format:      "json",
	})
	_ = reg.Add("ghostty_config", types.ConfigEntry{
		Name:        "Ghostty Terminal Config",
		SourcePath:  "ghostty/config",
		TargetPath:  types.ConfigTarget("ghostty/config"),
		Category:    types.CategoryTerminal,
		Enabled:     true,
		Description: "Ghostty terminal emulator configuration",
	})

	return reg
}

// DefaultPackages returns the stock package-manager registry.
func DefaultPackages() *Registry[types.PackageEntry] {
	reg := New[types.PackageEntry]()

	_ = reg.Add("brew", types.PackageEntry{
		Name:        "Homebrew Packages",
		Command:     "brew",
		Args:        []string{"leaves"},
		OutputFile:  "brew.txt",
		Enabled:     true,
		Description: "Homebrew installed packages (leaves only)",
		Platforms:   []types.Platform{types.PlatformMacOS, types.PlatformLinux},
	})
	_ = reg.Add("brew_cask", types.PackageEntry{
		Name:        "Homebrew Casks",
		Command:     "brew",
		Args:        []string{"list", "--cask"},
		OutputFile:  "brew-cask.txt",
		Enabled:     true,
		Description: "Homebrew installed casks (applications)",
		Platforms:   []types.Platform{types.PlatformMacOS},
	})
	_ = reg.Add("npm", types.PackageEntry{
		Name:        "npm Global Packages",
		Command:     "npm",
		Args:        []string{"ls", "-g"},
		OutputFile:  "npm.txt",
		Enabled:     true,
		Description: "npm globally installed packages",
	})
	_ = reg.Add("cargo", types.PackageEntry{
		Name:        "Cargo Packages",
		Command:     "cargo",
		Args:        []string{"install", "--list"},
		OutputFile:  "cargo.txt",
		Enabled:     true,
		Description: "Cargo installed packages",
	})
	_ = reg.Add("uv", types.PackageEntry{
		Name:        "uv Tools",
		Command:     "uv",
		Args:        []string{"tool", "list"},
		OutputFile:  "uv.txt",
		Enabled:     true,
		Description: "uv installed tools",
	})
	_ = reg.Add("pip", types.PackageEntry{
		Name:        "pip Packages",
		Command:     "pip",
		Args:        []string{"list", "--format=freeze"},
		OutputFile:  "pip.txt",
		Enabled:     false,
		Description: "pip installed packages (system-wide)",
	})

	return reg
}

// DefaultSecrets returns the stock secrets registry.
func DefaultSecrets() *Registry[types.SecretEntry] {
	reg := New[types.SecretEntry]()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}

	_ = reg.Add("ssh_config", types.SecretEntry{
		Name:        "SSH Config",
		SourcePath:  "ssh/config",
		TargetPath:  filepath.Join(home, ".ssh", "config"),
		Enabled:     true,
		Description: "SSH client configuration file",
	})
	_ = reg.Add("ssh_private_key", types.SecretEntry{
		Name:            "SSH Private Key",
		SourcePath:      "ssh/id_ed25519",
		TargetPath:      filepath.Join(home, ".ssh", "id_ed25519"),
		Enabled:         true,
		Description:     "SSH Ed25519 private key",
		EncryptFilename: true,
	})

	return reg
}
