package cmd

/*
Copyright © 2019 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/francois-poidevin/astrotracker/config"
	defaults "github.com/mcuadros/go-defaults"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "astrotracker",
	Short: "Astrotracker points a mount at a celestial body",
	Long: `Astrotracker resolves a body name and an observer location into
	azimuth/elevation every tick and sends the pointing payload to a serial device,
	or prints it when no device is connected.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

const envPrefix = "AT"

var (
	log     *logrus.Logger
	cfgFile string
	conf    = &config.Configuration{}
)

func init() {
	//log handling
	log = logrus.New()
	log.Formatter = new(logrus.TextFormatter)                     //default
	log.Formatter.(*logrus.TextFormatter).DisableColors = true    // remove colors
	log.Formatter.(*logrus.TextFormatter).DisableTimestamp = true // remove timestamp from test output
	log.Level = logrus.InfoLevel
	log.Out = os.Stderr

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(startHttpCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	for k := range asEnvVariables(conf, "", false) {
		err := viper.BindEnv(strings.ToLower(strings.Replace(k, "_", ".", -1)), envPrefix+"_"+k)
		if err != nil {
			log.WithFields(logrus.Fields{
				"var": envPrefix + "_" + k,
			}).Error("Unable to bind environment variable")
		}
	}

	defaults.SetDefaults(conf)

	if cfgFile == "" {
		cfgFile = homeConfig()
	}

	if cfgFile != "" {
		// If the config file doesn't exists, let's exit
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			log.WithFields(logrus.Fields{
				"err": err,
			}).Fatal("File doesn't exists")
		}

		log.WithFields(logrus.Fields{
			"File": cfgFile,
		}).Info("Reading configuration file")

		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.WithFields(logrus.Fields{
				"err": err,
			}).Fatal("Unable to read config")
		}
	}

	if err := viper.Unmarshal(conf); err != nil {
		log.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Unable to parse config")
	}

	level, err := logrus.ParseLevel(conf.Log.Level)
	if err != nil {
		log.WithFields(logrus.Fields{
			"level": conf.Log.Level,
		}).Warn("Unknown log level, keeping info")
		return
	}
	log.SetLevel(level)
}

// homeConfig returns ~/.astrotracker.toml when it exists.
func homeConfig() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".astrotracker.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
