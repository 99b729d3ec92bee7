package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/akashicode/aprovados/internal/config"
	"github.com/akashicode/aprovados/internal/dimension"
	"github.com/akashicode/aprovados/internal/display"
	"github.com/akashicode/aprovados/internal/extract"
)

var (
	cfgFile string
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "aprovados",
	Short: "Extract approved candidates from university admission lists.",
	Long: `Aprovados reads the call lists published by UFSCar, Fuvest, Provão Paulista,
IFSP and ENEM-USP, and turns them into deduplicated candidate records
(name, course, degree type, period) for one campus.

Settings come from ~/.aprovados/config.yaml, APROVADOS_* environment
variables and flags, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		display.SetQuiet(quiet)
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		display.ErrorMsg(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.aprovados/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print warnings, errors and records")
	rootCmd.PersistentFlags().String("location", "", "campus to keep (default \"São Carlos\")")
	rootCmd.PersistentFlags().String("dimension", "", "Fuvest code table CSV (default: embedded table)")
	rootCmd.PersistentFlags().String("aliases", "", "YAML file with extra institution aliases")
	bindFlag("location", rootCmd.PersistentFlags().Lookup("location"))
	bindFlag("dimension.path", rootCmd.PersistentFlags().Lookup("dimension"))
	bindFlag("aliases.path", rootCmd.PersistentFlags().Lookup("aliases"))

	config.SetDefaults(viper.GetViper())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			display.Warn(fmt.Sprintf("could not determine home directory: %v", err))
		} else {
			viper.AddConfigPath(filepath.Join(home, ".aprovados"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("APROVADOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// config.yaml is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			display.Warn(fmt.Sprintf("read config: %v", err))
		}
	}
}

// bindFlag makes a flag override the config key. Binding only fails on a nil
// flag, which is a programming error.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// newResolver returns the dimension resolver selected by the config.
func newResolver(cfg *config.Config) *dimension.Resolver {
	if cfg.Dimension.Path == "" {
		return dimension.Default()
	}
	return dimension.NewResolver(dimension.FileSource(cfg.Dimension.Path))
}

// newDispatcher builds a dispatcher with the configured location, code table
// and alias overrides.
func newDispatcher(cfg *config.Config) (*extract.Dispatcher, error) {
	var aliases map[string]extract.Format
	if cfg.Aliases.Path != "" {
		f, err := os.Open(cfg.Aliases.Path)
		if err != nil {
			return nil, fmt.Errorf("open aliases file: %w", err)
		}
		defer f.Close()
		aliases, err = extract.LoadAliases(f)
		if err != nil {
			return nil, fmt.Errorf("load aliases from %s: %w", cfg.Aliases.Path, err)
		}
	}
	return extract.NewDispatcher(extract.Options{
		Location: cfg.Location,
		Resolver: newResolver(cfg),
		Aliases:  aliases,
	})
}
