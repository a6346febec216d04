package config

// Config is the top-level configuration carrier.
type Config struct {
	App      AppConfig      `toml:"app"`
	Store    StoreConfig    `toml:"store"`
	Auth     AuthConfig     `toml:"auth"`
	Wikidata WikidataConfig `toml:"wikidata"`
	Openopus OpenopusConfig `toml:"openopus"`
	Search   SearchConfig   `toml:"search"`
	Policy   PolicyConfig   `toml:"policy"`
	Seed     SeedConfig     `toml:"seed"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	Secret          string `toml:"secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
	GuestEmail      string `toml:"guest_email"`
}

// WikidataConfig drives the composer authority client. Wikidata rejects
// anonymous default user agents, hence the explicit one.
type WikidataConfig struct {
	APIURL         string `toml:"api_url"`
	EntityURL      string `toml:"entity_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type OpenopusConfig struct {
	APIURL         string `toml:"api_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SearchConfig struct {
	MaxResults int `toml:"max_results"`
}

// PolicyConfig holds crowd-behavior switches that are product decisions,
// not code decisions.
type PolicyConfig struct {
	// SingleVotePerUser rejects repeat corroboration of the same report by
	// the same user. Off by default: unlimited voting allowed for now.
	SingleVotePerUser bool `toml:"single_vote_per_user"`
}

type SeedConfig struct {
	Path            string `toml:"path"`
	ImportComposers bool   `toml:"import_composers"`
}
