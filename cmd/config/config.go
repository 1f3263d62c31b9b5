package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-tasks/pkg/config"
)

var (
	cfgFile      string
	RootOverride string
	Verbose      bool
)

// InitConfig points viper at the config file and the TK_ environment.
func InitConfig() {
	initViper(viper.GetViper(), cfgFile)
}

func initViper(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		v.AddConfigPath(filepath.Join(home, ".config", "tk"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv applies to Unmarshal.
	d := config.Default()
	v.SetDefault("root", d.Root)
	v.SetDefault("scope", d.Scope)
	v.SetDefault("priority_tags", d.PriorityTags)
	v.SetDefault("snooze_tags", d.SnoozeTags)
	v.SetDefault("focus_tag", d.FocusTag)
	v.SetDefault("done_tag", d.DoneTag)
	v.SetDefault("completed_log", d.CompletedLog)
	v.SetDefault("excluded_folders", d.ExcludedFolders)
	v.SetDefault("projects_folder", d.ProjectsFolder)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("index_db", d.IndexDB)

	// A missing config file just means defaults.
	_ = v.ReadInConfig()
}

// Load decodes the active viper settings into a validated config.
func Load() (*config.Config, error) {
	cfg, err := decode(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if RootOverride != "" {
		cfg.Root = RootOverride
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/tk/config.yaml)")
	cmd.PersistentFlags().StringVarP(&RootOverride, "root", "r", "", "Content root directory (overrides config)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable debug logging")
}
