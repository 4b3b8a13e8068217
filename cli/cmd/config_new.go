package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/structs"
	"github.com/francois-poidevin/astrotracker/config"
	defaults "github.com/mcuadros/go-defaults"
	toml "github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

var configNewAsEnvFlag bool

// -----------------------------------------------------------------------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Astrotracker configuration",
}

var configNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Initialize a default configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeDefaultConfig(cmd.OutOrStdout(), configNewAsEnvFlag); err != nil {
			log.WithFields(logrus.Fields{
				"Error": err,
			}).Fatal("Error during configuration export")
		}
	},
}

func init() {
	configNewCmd.Flags().BoolVar(&configNewAsEnvFlag, "env", false, "export as environment variables")
	configCmd.AddCommand(configNewCmd)
}

// writeDefaultConfig prints the default configuration as TOML, or as export
// lines for the environment variables read by initConfig.
func writeDefaultConfig(w io.Writer, asEnv bool) error {
	c := &config.Configuration{}
	defaults.SetDefaults(c)

	if !asEnv {
		btes, err := toml.Marshal(*c)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(btes))
		return err
	}

	m := asEnvVariables(c, envPrefix, true)
	keys := []string{}

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "export %s=\"%s\"\n", k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// asEnvVariables flattens a configuration struct into environment variable names and values
func asEnvVariables(o interface{}, prefix string, skipCommented bool) map[string]string {
	r := map[string]string{}
	prefix = strings.ToUpper(prefix)
	delim := "_"
	if prefix == "" {
		delim = ""
	}
	fields := structs.Fields(o)
	for _, f := range fields {
		if skipCommented {
			tag := f.Tag("commented")
			if tag != "" {
				commented, err := strconv.ParseBool(tag)
				if err == nil && commented {
					continue
				}
			}
		}
		if structs.IsStruct(f.Value()) {
			rf := asEnvVariables(f.Value(), prefix+delim+f.Name(), skipCommented)
			for k, v := range rf {
				r[k] = v
			}
		} else {
			r[prefix+"_"+strings.ToUpper(f.Name())] = fmt.Sprintf("%v", f.Value())
		}
	}
	return r
}
