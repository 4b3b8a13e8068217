package resolver

// Configuration settings for the name resolution service
type Configuration struct {
	Sesame  string `toml:"sesame" default:"https://cds.unistra.fr/cgi-bin/nph-sesame/-oI/A,https://vizier.cfa.harvard.edu/viz-bin/nph-sesame/-oI/A" comment:"comma separated Sesame mirrors, tried in order"`
	Timeout int    `toml:"timeout" default:"10" comment:"name lookup timeout (sec)"`
}

// CacheConfiguration settings for the Redis lookup cache
type CacheConfiguration struct {
	Addr string `toml:"addr" default:"" comment:"Redis address, empty disables the cache"`
	DB   int    `toml:"db" default:"0" comment:"Redis database"`
	TTL  int    `toml:"ttl" default:"24" comment:"cached position lifetime (hours)"`
}
