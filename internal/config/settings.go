// Package config provides multi-level settings management for todochat.
// Settings are loaded from multiple sources with the following priority
// (lowest to highest):
//  1. built-in defaults
//  2. ~/.todochat/settings.yaml (user level)
//  3. .todochat/settings.yaml (project level)
//  4. environment variables (TODOCHAT_*)
package config

// Settings represents the complete todochat configuration.
type Settings struct {
	// APIBase is the origin of the chat backend, without a trailing
	// slash (e.g. "http://localhost:8001").
	APIBase string `yaml:"api_base,omitempty"`

	// AuthBase is the origin of the web app that mints API tokens.
	AuthBase string `yaml:"auth_base,omitempty"`

	// SessionCookie is the browser session cookie presented when
	// minting tokens (e.g. "__session=...").
	SessionCookie string `yaml:"session_cookie,omitempty"`

	// Conversation pins a conversation to resume on startup.
	Conversation string `yaml:"conversation,omitempty"`
}

// NewSettings creates a Settings instance with default values.
func NewSettings() *Settings {
	return &Settings{
		APIBase:  "http://localhost:8001",
		AuthBase: "http://localhost:3000",
	}
}

// MergeSettings overlays b onto a. Fields set in b win; empty fields in
// b leave a's value in place. Neither input is mutated.
func MergeSettings(a, b *Settings) *Settings {
	out := *a
	if b.APIBase != "" {
		out.APIBase = b.APIBase
	}
	if b.AuthBase != "" {
		out.AuthBase = b.AuthBase
	}
	if b.SessionCookie != "" {
		out.SessionCookie = b.SessionCookie
	}
	if b.Conversation != "" {
		out.Conversation = b.Conversation
	}
	return &out
}
