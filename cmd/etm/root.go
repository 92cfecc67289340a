package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/cmd/etm/couplingscmd"
	"github.com/quintel/etm/cmd/etm/curvescmd"
	"github.com/quintel/etm/cmd/etm/inputscmd"
	"github.com/quintel/etm/cmd/etm/packcmd"
	"github.com/quintel/etm/cmd/etm/querycmd"
	"github.com/quintel/etm/cmd/etm/scenariocmd"
	"github.com/quintel/etm/cmd/etm/sortablescmd"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/logutil"
	"github.com/quintel/etm/internal/pathutil"
)

const envPrefix = "ETM"

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "etm",
		Short: "Energy Transition Model scenario CLI",
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.PersistentFlags().String("api-token", "", "ETM API token (defaults to ETM_API_TOKEN).")
	cmd.PersistentFlags().String("base-url", "", "Engine API base URL (overrides environment).")
	cmd.PersistentFlags().String("environment", "", "Engine environment: pro|beta|local|YYYY-MM.")
	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error (defaults to info).")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")

	_ = viper.BindPFlag("api_token", cmd.PersistentFlags().Lookup("api-token"))
	_ = viper.BindPFlag("base_url", cmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("environment", cmd.PersistentFlags().Lookup("environment"))
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(scenariocmd.New(scenariocmd.Dependencies{Connect: connectFromViper}))
	cmd.AddCommand(inputscmd.New(inputscmd.Dependencies{Connect: connectFromViper}))
	cmd.AddCommand(querycmd.New(querycmd.Dependencies{Connect: connectFromViper}))
	cmd.AddCommand(sortablescmd.New(sortablescmd.Dependencies{Connect: connectFromViper}))
	cmd.AddCommand(curvescmd.New(curvescmd.Dependencies{Connect: connectFromViper}))
	cmd.AddCommand(couplingscmd.New(couplingscmd.Dependencies{Connect: connectFromViper}))
	cmd.AddCommand(packcmd.New(packcmd.Dependencies{Connect: connectFromViper}))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	initViperDefaults()
	config.LoadDotenv()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Unprefixed spellings are documented alongside the ETM_* ones.
	_ = viper.BindEnv("base_url", "ETM_BASE_URL", "BASE_URL")
	_ = viper.BindEnv("environment", "ETM_ENVIRONMENT", "ENVIRONMENT")
	_ = viper.BindEnv("local_engine_url", "ETM_LOCAL_ENGINE_URL", "LOCAL_ENGINE_URL")
	_ = viper.BindEnv("local_model_url", "ETM_LOCAL_MODEL_URL", "LOCAL_MODEL_URL")
	_ = viper.BindEnv("proxy.http", "ETM_PROXY_SERVERS_HTTP", "PROXY_SERVERS_HTTP")
	_ = viper.BindEnv("proxy.https", "ETM_PROXY_SERVERS_HTTPS", "PROXY_SERVERS_HTTPS")

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		// config.yml in the working directory is picked up when present.
		if _, err := os.Stat("config.yml"); err == nil {
			cfgFile = "config.yml"
		} else {
			return
		}
	}
	cfgFile = pathutil.ExpandHomePath(cfgFile)

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		return
	}

	if raw := strings.TrimSpace(viper.GetString("tmp_dir")); raw != "" {
		viper.Set("tmp_dir", pathutil.ExpandHomePath(raw))
	}
}

// connectFromViper resolves settings, builds the API client and installs
// the configured logger as default.
func connectFromViper() (*client.Client, config.Settings, error) {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return nil, config.Settings{}, err
	}
	slog.SetDefault(logger)

	settings := config.FromViper()
	if settings.TmpDir == "" {
		dir, err := settings.TmpPath("")
		if err != nil {
			return nil, config.Settings{}, err
		}
		settings.TmpDir = dir
	}

	c, err := client.NewFromSettings(settings, client.WithLogger(logger))
	if err != nil {
		return nil, config.Settings{}, err
	}
	return c, settings, nil
}
