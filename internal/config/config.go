package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/mathglossary/internal/classifier"
	"github.com/nao1215/mathglossary/internal/crawler"
	"github.com/nao1215/mathglossary/internal/model"
	"github.com/nao1215/mathglossary/internal/tokenizer"
	"github.com/nao1215/mathglossary/internal/wiki"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "mathglossary"

	// DefaultAPIURL is the Action API endpoint of ProofWiki.
	DefaultAPIURL = "https://proofwiki.org/w/api.php"

	// DefaultRootCategory is the category the harvest starts from.
	DefaultRootCategory = "Definitions/Branches of Mathematics"

	// DefaultNestedLimit is the depth at which subcategories stop being listed.
	DefaultNestedLimit = crawler.DefaultNestedLimit

	// DefaultMemberLimit is the page size of category member listings.
	DefaultMemberLimit = crawler.DefaultMemberLimit

	// MaxMemberLimit is the largest page size MediaWiki accepts from clients
	// without the apihighlimits right.
	MaxMemberLimit = 500

	// DefaultTimeout is the per-request timeout of the wiki client.
	DefaultTimeout = 60 * time.Second

	// DefaultOutputFile is where the ranked word table is exported.
	DefaultOutputFile = "math-glossary-result.csv"

	// DefaultTopSections is how many section titles the report shows.
	DefaultTopSections = model.DefaultTopSections

	// DefaultTopWords is how many words the report shows.
	DefaultTopWords = model.DefaultTopWords

	// DefaultUserAgent identifies mathglossary in HTTP requests.
	// Wikimedia-style wikis reject requests without a descriptive User-Agent.
	DefaultUserAgent = wiki.DefaultUserAgent
)

// Config holds all configuration options for mathglossary.
// It is populated from defaults, then the config file, then CLI flags, and
// passed through the application rather than kept in global state.
type Config struct {
	// APIURL is the MediaWiki api.php endpoint.
	APIURL string

	// RootCategory is the category the traversal starts from,
	// without the "Category:" prefix.
	RootCategory string

	// NestedLimit is the depth at which subcategories stop being listed.
	NestedLimit int

	// MemberLimit is the page size of category member listings.
	MemberLimit int

	// RequestDelay is the pause between page fetches. Zero disables it.
	RequestDelay time.Duration

	// BlacklistedCategories seed the classifier. A category below any of them
	// is blacklisted too.
	BlacklistedCategories []string

	// ExcludedSections are section titles that are never tokenized.
	ExcludedSections []string

	// ExcludedSectionPrefixes are section title prefixes that are never tokenized.
	ExcludedSectionPrefixes []string

	// ExcludedNamespaces are page title prefixes that are never fetched.
	ExcludedNamespaces []string

	// OutputFile is the CSV export path. Empty disables the export.
	OutputFile string

	// ReportFile is an optional file receiving the run report. The format
	// follows the file extension (.json, .md, or plain text).
	ReportFile string

	// MarkdownReport prints the report to stdout as Markdown instead of text.
	MarkdownReport bool

	// TopSections is how many section titles the report shows.
	TopSections int

	// TopWords is how many words the report shows.
	TopWords int

	// Timeout is the per-request timeout of the wiki client.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Cookie is sent with every wiki request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string

	// Headers are custom HTTP headers sent with every wiki request.
	Headers map[string]string

	// UserAgent is the User-Agent header sent with every wiki request.
	UserAgent string

	// DBDir is the directory of the run archive.
	// Defaults to the XDG data directory (~/.local/share/mathglossary on Linux).
	DBDir string

	// SaveToDB archives the run when true.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:                  DefaultAPIURL,
		RootCategory:            DefaultRootCategory,
		NestedLimit:             DefaultNestedLimit,
		MemberLimit:             DefaultMemberLimit,
		BlacklistedCategories:   append([]string(nil), classifier.DefaultBlacklist...),
		ExcludedSections:        append([]string(nil), tokenizer.DefaultExcludedSections...),
		ExcludedSectionPrefixes: append([]string(nil), tokenizer.DefaultExcludedSectionPrefixes...),
		ExcludedNamespaces:      append([]string(nil), crawler.DefaultExcludedNamespaces...),
		OutputFile:              DefaultOutputFile,
		TopSections:             DefaultTopSections,
		TopWords:                DefaultTopWords,
		Timeout:                 DefaultTimeout,
		UserAgent:               DefaultUserAgent,
		DBDir:                   XDGDataDir(),
		SaveToDB:                true,
	}
}

// XDGDataDir returns the XDG data directory for mathglossary.
// On Linux: ~/.local/share/mathglossary
// On macOS: ~/Library/Application Support/mathglossary
// On Windows: %LOCALAPPDATA%\mathglossary
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mathglossary.
// On Linux: ~/.config/mathglossary
// On macOS: ~/Library/Application Support/mathglossary
// On Windows: %APPDATA%\mathglossary
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidAPIURL
	}

	if c.RootCategory == "" {
		return ErrEmptyRootCategory
	}

	if c.NestedLimit <= 0 {
		return ErrInvalidNestedLimit
	}

	if c.MemberLimit <= 0 || c.MemberLimit > MaxMemberLimit {
		return ErrInvalidMemberLimit
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}

	if c.TopSections < 0 || c.TopWords < 0 {
		return ErrInvalidTopCount
	}

	if c.SaveToDB && c.DBDir == "" {
		return ErrEmptyDBDir
	}

	return nil
}
