package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type VersionInfo struct {
	Version string
	Commit  string
}

func NewRootCommand(info VersionInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pyplnctl",
		Short:         "PyPLN web management commands",
		Long:          "Maintenance commands for the PyPLN web application: search index updates, pipeline resubmission and schema migration.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default is configs/config.toml or $CONFIG_FILE)")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindEnv("config", "CONFIG_FILE")
	viper.SetDefault("config", "configs/config.toml")

	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}
