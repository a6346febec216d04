package config

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8080"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/examrecord.db"
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		c.Auth.TokenTTLMinutes = 60 * 24
	}
	if c.Auth.GuestEmail == "" {
		c.Auth.GuestEmail = "guest@examrecord.local"
	}
	if c.Wikidata.APIURL == "" {
		c.Wikidata.APIURL = "https://www.wikidata.org/w/api.php"
	}
	if c.Wikidata.EntityURL == "" {
		c.Wikidata.EntityURL = "https://www.wikidata.org/wiki/Special:EntityData"
	}
	if c.Wikidata.UserAgent == "" {
		c.Wikidata.UserAgent = "ExamRecordBot/1.0 (exam-record-project)"
	}
	if c.Wikidata.TimeoutSeconds <= 0 {
		c.Wikidata.TimeoutSeconds = 10
	}
	if c.Openopus.APIURL == "" {
		c.Openopus.APIURL = "https://api.openopus.org"
	}
	if c.Openopus.TimeoutSeconds <= 0 {
		c.Openopus.TimeoutSeconds = 10
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 20
	}
	if c.Seed.Path == "" {
		c.Seed.Path = "configs/seed.yaml"
	}
}
