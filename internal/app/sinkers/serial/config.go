package serial

// Configuration settings for the serial device sink
type Configuration struct {
	Enabled bool   `toml:"enabled" default:"true" comment:"try to open the device at session start"`
	Path    string `toml:"path" default:"/dev/ttyACM0" comment:"serial device path"`
	Baud    int    `toml:"baud" default:"9600" comment:"baud rate"`
	Timeout int    `toml:"timeout" default:"100" comment:"read timeout (ms)"`
}
