package config

import (
	"github.com/francois-poidevin/astrotracker/internal/app/resolver"
	"github.com/francois-poidevin/astrotracker/internal/app/sinkers/db"
	"github.com/francois-poidevin/astrotracker/internal/app/sinkers/file"
	"github.com/francois-poidevin/astrotracker/internal/app/sinkers/serial"
)

// Configuration contains conectivity settings
type Configuration struct {
	Log struct {
		Level string `toml:"level" default:"info" comment:"Log level: trace, debug, info, warn, error, fatal and panic"`
	} `toml:"Log" comment:"###############################\n Logs Settings \n##############################"`

	Astrotracker struct {
		Tick     int                         `toml:"tick" default:"10" comment:"seconds between two fixes"`
		Recorder string                      `toml:"recorder" default:"NONE" comment:"the recorder type use (NONE|FILE|DB)"`
		Serial   serial.Configuration        `toml:"serial" comment:"###############################\n serial device configuration \n##############################"`
		Resolver resolver.Configuration      `toml:"resolver" comment:"###############################\n name resolution configuration \n##############################"`
		Cache    resolver.CacheConfiguration `toml:"cache" comment:"###############################\n Redis lookup cache configuration \n##############################"`
		Catalog  struct {
			File string `toml:"file" default:"" comment:"extra object names, one per line"`
		} `toml:"catalog"`
		File     file.Configuration `toml:"file" comment:"###############################\n file recorder configuration \n##############################"`
		Postgres db.Configuration   `toml:"postgres" comment:"###############################\n db recorder configuration \n##############################"`
		Http     struct {
			Listen string `toml:"listen" default:":8080" comment:"REST API listen address"`
		} `toml:"http"`
	} `toml:"Astrotracker" comment:"###############################\n Astrotracker Settings \n##############################"`
}
