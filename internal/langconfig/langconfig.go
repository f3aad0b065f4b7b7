// Package langconfig holds the static per-language table the crawler
// and CLI consult: which file extensions belong to a language, which
// tokens are keywords (and so never queried), and how to spawn or
// install that language's server. The table itself is data, embedded
// as YAML at build time — this package only loads and looks it up.
package langconfig

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

// Language is one entry of the static language table.
type Language struct {
	Name           string          `yaml:"-"`
	Extensions     []string        `yaml:"extensions"`
	Keywords       map[string]bool `yaml:"-"`
	KeywordList    []string        `yaml:"keywords"`
	StartCommand   string          `yaml:"start_command"`
	InstallCommand string          `yaml:"installation_command"`
}

// MatchesExtension reports whether filename's extension is configured
// for this language.
func (l Language) MatchesExtension(filename string) bool {
	for _, pattern := range l.Extensions {
		if ok, _ := doublestar.Match(pattern, filename); ok {
			return true
		}
	}
	return false
}

type table map[string]Language

var languages = mustLoad(languagesYAML)

func mustLoad(data []byte) table {
	var raw map[string]Language
	if err := yaml.Unmarshal(data, &raw); err != nil {
		panic(fmt.Sprintf("langconfig: embedded table is malformed: %v", err))
	}
	t := make(table, len(raw))
	for name, lang := range raw {
		lang.Name = name
		lang.Keywords = make(map[string]bool, len(lang.KeywordList))
		for _, kw := range lang.KeywordList {
			lang.Keywords[kw] = true
		}
		t[name] = lang
	}
	return t
}

// Lookup returns the configuration for name, or an error if name is
// not a known language.
func Lookup(name string) (Language, error) {
	lang, ok := languages[name]
	if !ok {
		return Language{}, fmt.Errorf("langconfig: unknown language %q (see --langs for the supported list)", name)
	}
	return lang, nil
}

// Names returns every configured language name, sorted.
func Names() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
