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
	"context"
	"os"

	"github.com/francois-poidevin/astrotracker/internal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start <body> <lat> <lon>",
	Short: "Allow to start tracking of a celestial body in headless mode",
	Long: `Track a solar-system body (sun, moon, mercury ... neptune) or any name known
	by the Sesame name resolver from the given observer latitude and longitude (decimal degrees).
	Pointing payloads go to the serial device when it can be opened, otherwise lines are printed.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Initialize config
		initConfig()

		errExec := internal.Execute(ctx, log, *conf, args[0], args[1], args[2], os.Stdout)
		if errExec != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errExec,
			}).Error("Error in Execute processing")
			os.Exit(1)
		}
	},
}

func init() {
	startCmd.Flags().StringVar(&cfgFile, "config", "", "config file")
}
