package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("api_token", "")
	viper.SetDefault("base_url", "")
	viper.SetDefault("environment", "pro")
	viper.SetDefault("local_engine_url", "")
	viper.SetDefault("local_model_url", "")

	viper.SetDefault("proxy.http", "")
	viper.SetDefault("proxy.https", "")

	viper.SetDefault("csv.separator", ",")
	viper.SetDefault("csv.decimal_separator", ".")

	viper.SetDefault("tmp_dir", "~/.cache/etm")

	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.retries", 2)
	viper.SetDefault("http.rate_limit", 0.0)

	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
