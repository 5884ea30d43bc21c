package config

import "time"

// File represents the structure of the .mathglossary configuration file.
// Every field is optional; unset fields keep the value already in Config.
type File struct {
	// APIURL is the MediaWiki api.php endpoint.
	APIURL string `yaml:"apiURL,omitempty"`

	// RootCategory is the category the harvest starts from.
	RootCategory string `yaml:"rootCategory,omitempty"`

	// NestedLimit overrides the traversal depth limit.
	NestedLimit int `yaml:"nestedLimit,omitempty"`

	// MemberLimit overrides the page size of member listings.
	MemberLimit int `yaml:"memberLimit,omitempty"`

	// RequestDelay is the pause between page fetches, e.g. "500ms".
	RequestDelay time.Duration `yaml:"requestDelay,omitempty"`

	// BlacklistedCategories replaces the category blacklist.
	BlacklistedCategories []string `yaml:"blacklistedCategories,omitempty"`

	// ExcludedSections replaces the section denylist.
	ExcludedSections []string `yaml:"excludedSections,omitempty"`

	// ExcludedSectionPrefixes replaces the section prefix denylist.
	ExcludedSectionPrefixes []string `yaml:"excludedSectionPrefixes,omitempty"`

	// ExcludedNamespaces replaces the page namespaces that are never fetched.
	ExcludedNamespaces []string `yaml:"excludedNamespaces,omitempty"`

	// Output is the CSV export path.
	Output string `yaml:"output,omitempty"`

	// TopSections overrides the size of the section table in the report.
	TopSections int `yaml:"topSections,omitempty"`

	// TopWords overrides the size of the word table in the report.
	TopWords int `yaml:"topWords,omitempty"`

	// Timeout is the per-request timeout, e.g. "60s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is a SOCKS5 proxy in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// Cookie is an HTTP cookie sent with every wiki request.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with every wiki request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// DBDir overrides the run archive directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// Apply copies every set field of the file into cfg.
// Lists replace the defaults rather than extending them; headers are merged.
func (f *File) Apply(cfg *Config) {
	if f.APIURL != "" {
		cfg.APIURL = f.APIURL
	}
	if f.RootCategory != "" {
		cfg.RootCategory = f.RootCategory
	}
	if f.NestedLimit != 0 {
		cfg.NestedLimit = f.NestedLimit
	}
	if f.MemberLimit != 0 {
		cfg.MemberLimit = f.MemberLimit
	}
	if f.RequestDelay != 0 {
		cfg.RequestDelay = f.RequestDelay
	}
	if f.BlacklistedCategories != nil {
		cfg.BlacklistedCategories = f.BlacklistedCategories
	}
	if f.ExcludedSections != nil {
		cfg.ExcludedSections = f.ExcludedSections
	}
	if f.ExcludedSectionPrefixes != nil {
		cfg.ExcludedSectionPrefixes = f.ExcludedSectionPrefixes
	}
	if f.ExcludedNamespaces != nil {
		cfg.ExcludedNamespaces = f.ExcludedNamespaces
	}
	if f.Output != "" {
		cfg.OutputFile = f.Output
	}
	if f.TopSections != 0 {
		cfg.TopSections = f.TopSections
	}
	if f.TopWords != 0 {
		cfg.TopWords = f.TopWords
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.Cookie != "" {
		cfg.Cookie = f.Cookie
	}
	if len(f.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range f.Headers {
			cfg.Headers[k] = v
		}
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
}
