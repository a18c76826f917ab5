package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/qrshield/assets"
	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/pkg/filesystem"
	"github.com/doeshing/qrshield/internal/ports"
)

// Blacklist implements the KeywordMatcher port with case-insensitive substring rules.
type Blacklist struct {
	rules  []KeywordRule
	source string
}

// KeywordRule describes one blacklist entry.
type KeywordRule struct {
	Keyword string `yaml:"keyword"`
	Message string `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		Keywords []KeywordRule `yaml:"keywords"`
	} `yaml:"rules"`
}

// NewBlacklist loads keyword rules from disk, falling back to the embedded defaults
// when the file is missing or empty.
func NewBlacklist(path string) (*Blacklist, error) {
	rules, source, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	return newBlacklist(rules.Rules.Keywords, source)
}

// DefaultBlacklist returns the built-in keyword set.
func DefaultBlacklist() (*Blacklist, error) {
	rules, err := parseRules(assets.DefaultBlacklistYAML)
	if err != nil {
		return nil, err
	}
	return newBlacklist(rules.Rules.Keywords, "embedded")
}

func newBlacklist(keywords []KeywordRule, source string) (*Blacklist, error) {
	var compiled []KeywordRule
	for _, rule := range keywords {
		kw := strings.ToLower(strings.TrimSpace(rule.Keyword))
		if kw == "" {
			return nil, errors.New("blacklist rule with empty keyword")
		}
		compiled = append(compiled, KeywordRule{Keyword: kw, Message: rule.Message})
	}
	return &Blacklist{rules: compiled, source: source}, nil
}

// Match returns every rule whose keyword occurs in text, ignoring case.
func (b *Blacklist) Match(text string) []domain.KeywordMatch {
	if b == nil {
		return nil
	}
	lowered := strings.ToLower(text)
	var matches []domain.KeywordMatch
	for _, rule := range b.rules {
		if strings.Contains(lowered, rule.Keyword) {
			matches = append(matches, domain.KeywordMatch{Keyword: rule.Keyword, Message: rule.Message})
		}
	}
	return matches
}

// Keywords lists the configured keywords in file order.
func (b *Blacklist) Keywords() []string {
	out := make([]string, 0, len(b.rules))
	for _, rule := range b.rules {
		out = append(out, rule.Keyword)
	}
	return out
}

// Source names where the rules were loaded from.
func (b *Blacklist) Source() string {
	return b.source
}

func loadRules(path string) (RulesFile, string, error) {
	path = RulesPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		// fall back to defaults
		rules, perr := parseRules(assets.DefaultBlacklistYAML)
		return rules, "embedded", perr
	}
	rules, err := parseRules(data)
	if err != nil {
		return RulesFile{}, "", fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rules.Rules.Keywords) == 0 {
		rules, err = parseRules(assets.DefaultBlacklistYAML)
		return rules, "embedded", err
	}
	return rules, path, nil
}

func parseRules(data []byte) (RulesFile, error) {
	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	return rules, nil
}

// RulesPath resolves the rules file location, defaulting to ~/.qrshield/blacklist.yaml.
func RulesPath(path string) string {
	if path == "" {
		return filesystem.AppPath("blacklist.yaml")
	}
	return filesystem.ExpandPath(path)
}

// InitRules writes the embedded keyword set to path so it can be edited. An existing
// file is kept unless force is set. It returns the resolved path.
func InitRules(path string, force bool) (string, error) {
	path = RulesPath(path)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, os.ErrExist
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return path, err
	}
	return path, os.WriteFile(path, assets.DefaultBlacklistYAML, domain.SecureFilePermissions)
}

var _ ports.KeywordMatcher = (*Blacklist)(nil)
