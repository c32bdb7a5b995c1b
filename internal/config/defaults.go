package config

// DefaultFileName is the site configuration file looked up in the working
// directory when no explicit path is given.
const DefaultFileName = "sitegen.yaml"

// Default returns a configuration populated with the documented defaults.
func Default() *Config {
	return &Config{
		Title:   "Site",
		BaseURL: "/",
		Pages: PagesConfig{
			Directory:  "pages",
			Extensions: []string{".md", ".markdown"},
		},
		Data:    DataConfig{Directory: "data"},
		Static:  StaticConfig{Directory: "static"},
		Layouts: LayoutsConfig{Directory: "layouts"},
		Output:  OutputConfig{Directory: "_site"},
		Cache:   CacheConfig{Directory: ".cache"},
		Server:  ServerConfig{Host: "localhost", Port: 8000},
	}
}

// applyDefaults fills zero values left after unmarshalling.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Pages.Directory == "" {
		c.Pages.Directory = d.Pages.Directory
	}
	if len(c.Pages.Extensions) == 0 {
		c.Pages.Extensions = d.Pages.Extensions
	}
	if c.Data.Directory == "" {
		c.Data.Directory = d.Data.Directory
	}
	if c.Static.Directory == "" {
		c.Static.Directory = d.Static.Directory
	}
	if c.Layouts.Directory == "" {
		c.Layouts.Directory = d.Layouts.Directory
	}
	if c.Output.Directory == "" {
		c.Output.Directory = d.Output.Directory
	}
	if c.Cache.Directory == "" {
		c.Cache.Directory = d.Cache.Directory
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
}
