package config

// Config represents the site configuration.
type Config struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description,omitempty"`
	BaseURL     string            `yaml:"baseurl,omitempty"`
	Taxonomies  map[string]string `yaml:"taxonomies,omitempty"` // plural -> singular, e.g. tags: tag
	Menus       map[string][]Menu `yaml:"menus,omitempty"`
	Params      map[string]any    `yaml:"params,omitempty"`

	Pages   PagesConfig   `yaml:"pages"`
	Data    DataConfig    `yaml:"data"`
	Static  StaticConfig  `yaml:"static"`
	Layouts LayoutsConfig `yaml:"layouts"`
	Output  OutputConfig  `yaml:"output"`
	Cache   CacheConfig   `yaml:"cache"`
	Server  ServerConfig  `yaml:"server"`
	Headers []HeaderRule  `yaml:"headers,omitempty"`
}

// Menu represents one entry of a named menu.
type Menu struct {
	ID     string `yaml:"id,omitempty"`
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Weight int    `yaml:"weight,omitempty"`
}

// PagesConfig locates the content tree.
type PagesConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"ext,omitempty"`
}

// DataConfig locates the YAML data tree.
type DataConfig struct {
	Directory string `yaml:"directory"`
}

// StaticConfig locates files copied verbatim into the output.
type StaticConfig struct {
	Directory string `yaml:"directory"`
}

// LayoutsConfig locates user templates; the built-in layout is used when the
// directory is absent.
type LayoutsConfig struct {
	Directory string `yaml:"directory"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// CacheConfig locates the build cache.
type CacheConfig struct {
	Directory string `yaml:"directory"`
}

// ServerConfig holds the dev server parameters. It is fixed for the lifetime
// of a serve loop and never mutated after the server process starts.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// HeaderRule maps a path pattern to response headers, emitted to the headers
// control file in configuration order.
type HeaderRule struct {
	Path    string   `yaml:"path"`
	Headers []Header `yaml:"headers"`
}

// Header is a single response header key/value pair.
type Header struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}
