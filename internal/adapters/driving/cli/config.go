package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and set configuration values. Keys use dot notation, for
example "embedding.provider" or "chunking.size".`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		cmd.Printf("%s is not set\n", args[0])
		return nil
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Store integers and booleans typed so GetInt/GetBool work.
	var value any = raw
	if i, err := strconv.Atoi(raw); err == nil {
		value = i
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}
