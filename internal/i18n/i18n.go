// Package i18n resolves UI strings by stable message key. The presentation
// layer asks for keys, never for source display text.
package i18n

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Supported languages, base first.
var Supported = []string{"de", "en"}

type Vars map[string]any

type Catalog struct {
	base     string
	messages map[string]map[string]string
	matcher  language.Matcher
	tags     []language.Tag
	logger   *zap.Logger

	templates sync.Map // template text -> *template.Template
}

// New loads the embedded catalog. base is the fallback language and must be
// one of Supported.
func New(base string, logger *zap.Logger) (*Catalog, error) {
	return parse(catalogYAML, base, logger)
}

func parse(raw []byte, base string, logger *zap.Logger) (*Catalog, error) {
	var messages map[string]map[string]string
	if err := yaml.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if _, ok := messages[base]; !ok {
		return nil, fmt.Errorf("catalog has no base language %q", base)
	}

	// base goes first so the matcher falls back to it
	tags := []language.Tag{language.Make(base)}
	for _, l := range Supported {
		if l == base {
			continue
		}
		if _, ok := messages[l]; !ok {
			return nil, fmt.Errorf("catalog has no language %q", l)
		}
		tags = append(tags, language.Make(l))
	}

	c := &Catalog{
		base:     base,
		messages: messages,
		matcher:  language.NewMatcher(tags),
		tags:     tags,
		logger:   logger.Named("i18n"),
	}
	c.logger.Info("loaded catalog", zap.Int("languages", len(messages)), zap.Int("keys", len(messages[base])))
	return c, nil
}

func (c *Catalog) Base() string { return c.base }

// Supports reports whether lang is exactly one of the catalog languages.
func (c *Catalog) Supports(lang string) bool {
	for _, t := range c.tags {
		if t.String() == lang {
			return true
		}
	}
	return false
}

// Match picks the catalog language for the given preferences, most important
// first (e.g. a cookie value, then an Accept-Language header).
func (c *Catalog) Match(prefs ...string) string {
	var rest []string
	for _, p := range prefs {
		if c.Supports(p) {
			return p
		}
		if p != "" {
			rest = append(rest, p)
		}
	}
	if len(rest) == 0 {
		return c.base
	}
	tag, _ := language.MatchStrings(c.matcher, rest...)
	base, _ := tag.Base()
	if c.Supports(base.String()) {
		return base.String()
	}
	return c.base
}

// Messages returns a copy of the resolved catalog for lang, with missing keys
// filled from the base language.
func (c *Catalog) Messages(lang string) map[string]string {
	out := make(map[string]string, len(c.messages[c.base]))
	for k, v := range c.messages[c.base] {
		out[k] = v
	}
	if lang != c.base {
		for k, v := range c.messages[lang] {
			out[k] = v
		}
	}
	return out
}

// Tr resolves key for lang and renders kv (alternating name, value) into it.
// Missing keys fall back to the base language, then to the key itself.
func (c *Catalog) Tr(lang, key string, kv ...any) string {
	text, ok := c.messages[lang][key]
	if !ok {
		text, ok = c.messages[c.base][key]
	}
	if !ok {
		c.logger.Debug("missing key", zap.String("lang", lang), zap.String("key", key))
		return key
	}
	return c.render(text, vars(kv...))
}

func (c *Catalog) render(s string, data Vars) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var tmpl *template.Template
	if t, ok := c.templates.Load(s); ok {
		tmpl = t.(*template.Template)
	} else {
		var err error
		tmpl, err = template.New("msg").Option("missingkey=error").Parse(s)
		if err != nil {
			c.logger.Warn("template parse error", zap.String("text", s), zap.Error(err))
			return s
		}
		c.templates.Store(s, tmpl)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		c.logger.Warn("template execute error", zap.String("text", s), zap.Error(err))
		return s
	}
	return buf.String()
}

// vars builds Vars from alternating key, value pairs. Odd trailing values and
// non-string keys are dropped.
func vars(kv ...any) Vars {
	m := make(Vars, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}
