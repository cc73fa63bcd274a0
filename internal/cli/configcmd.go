package cli

import (
	"fmt"
	"strings"

	"github.com/exch-cli/exch/internal/config"
	"github.com/exch-cli/exch/internal/output"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., ews_url, mailbox)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Unknown config key: %s", cmd.Key),
			ExitCode: output.ExitNotFound,
			Hint:     "Valid keys: " + strings.Join(config.Keys(), ", "),
		}
	}

	// Print value to stdout
	fmt.Println(value)
	return nil
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config) error {
	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitUsage,
			Hint:     "Valid keys: " + strings.Join(config.Keys(), ", "),
		}
	}

	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to unset"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config) error {
	if err := cfg.Unset(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitUsage,
			Hint:     "Valid keys: " + strings.Join(config.Keys(), ", "),
		}
	}

	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	type configRow struct {
		Key   string
		Value string
	}

	var rows []configRow
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		rows = append(rows, configRow{Key: key, Value: value})
	}

	return fp.Formatter.PrintList(rows, []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value"},
	})
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run() error {
	fmt.Println(config.ConfigPath())
	return nil
}
