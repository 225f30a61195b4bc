package config

import (
	"maps"
	"time"
)

// SiteConfig holds settings for one external site (an oracle or the name
// candidate source).
type SiteConfig struct {
	// BaseURL overrides the built-in base URL of the site.
	BaseURL string `yaml:"base_url,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Cookie is an HTTP cookie to send to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Delay overrides the request delay for this site.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// File represents the structure of the .kakusu configuration file.
type File struct {
	// Sites maps a site name (enamae, namaeuranai, bname) to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults is applied to every site unless the site entry overrides it.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a site, merged with defaults.
func (cf *File) GetSiteConfig(site string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	sc, ok := cf.Sites[site]
	if !ok {
		return result
	}
	if sc.BaseURL != "" {
		result.BaseURL = sc.BaseURL
	}
	if sc.UserAgent != "" {
		result.UserAgent = sc.UserAgent
	}
	if sc.Cookie != "" {
		result.Cookie = sc.Cookie
	}
	if sc.Delay != 0 {
		result.Delay = sc.Delay
	}
	if len(sc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(sc.Headers))
		}
		maps.Copy(result.Headers, sc.Headers)
	}
	return result
}
