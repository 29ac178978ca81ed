package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change project settings",
	Long: `Config reads and writes keys of the project file in dotted form,
for example "tools.lzss" or "insert.backup".`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every key of the project file",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a project setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a project setting",
	Long: `Set writes a key to the project file. Values that parse as booleans or
numbers are stored as such; everything else is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a project file with the default layout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
}

func projectConfig() (ProjectConfig, error) {
	if openConfig == nil {
		return nil, errors.New("config store not configured")
	}
	return openConfig(projectPath)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg, err := projectConfig()
	if err != nil {
		return err
	}
	keys := cfg.Keys()
	if len(keys) == 0 {
		cmd.Printf("No settings in %s\n", cfg.Path())
		return nil
	}
	for _, k := range keys {
		v, _ := cfg.Get(k)
		cmd.Printf("%s = %v\n", k, v)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := projectConfig()
	if err != nil {
		return err
	}
	v, ok := cfg.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set in %s", args[0], cfg.Path())
	}
	cmd.Println(v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := projectConfig()
	if err != nil {
		return err
	}
	key, value := args[0], parseValue(args[1])
	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if _, err := cfg.Project(); err != nil {
		return fmt.Errorf("%s was saved but the project is now invalid: %w", key, err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := projectConfig()
	if err != nil {
		return err
	}
	name := filepath.Base(filepath.Dir(cfg.Path()))
	if len(args) > 0 {
		name = args[0]
	}
	p, err := cfg.Init(name)
	if err != nil {
		return err
	}
	cmd.Printf("Created %s for project %q.\n", cfg.Path(), p.Name)
	cmd.Printf("Put the game files in %s or run 'scenetext extract image <game.nds>'.\n", p.Paths.OriginalFiles)
	return nil
}

// parseValue converts a command line value to an int, bool, float or string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
