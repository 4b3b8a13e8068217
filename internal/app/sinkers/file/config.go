package file

// Configuration settings for file recording
type Configuration struct {
	Output string `toml:"output" default:"log/tracking.log" comment:"output file receiving every session line"`
}
