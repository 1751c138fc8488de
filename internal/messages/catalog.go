// Package messages renders user-facing text from a YAML catalog of
// translation keys.
package messages

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var defaultLanguages []byte

// DefaultYAML returns the built-in catalog source.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultLanguages))
	copy(out, defaultLanguages)
	return out
}

// Catalog maps dotted keys such as "command.add.success" to templates. It is
// immutable; reloading builds a new one.
type Catalog struct {
	templates map[string]string
	style     Style
}

// Default parses the embedded catalog.
func Default(style Style) *Catalog {
	c, err := Parse(defaultLanguages, style)
	if err != nil {
		panic(fmt.Sprintf("embedded languages.yaml: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the embedded catalog.
func Load(path string, style Style) (*Catalog, error) {
	if path == "" {
		return Default(style), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	c, err := Parse(data, style)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	return c, nil
}

// Parse flattens nested YAML maps into dotted keys. A list becomes one
// template with its items on separate lines.
func Parse(data []byte, style Style) (*Catalog, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c := &Catalog{templates: make(map[string]string), style: style}
	flatten("", root, c.templates)
	return c, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case []any:
			lines := make([]string, 0, len(v))
			for _, item := range v {
				lines = append(lines, fmt.Sprint(item))
			}
			out[full] = strings.Join(lines, "\n")
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}

// Lookup returns the raw template for key.
func (c *Catalog) Lookup(key string) (string, bool) {
	t, ok := c.templates[key]
	return t, ok
}

func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.templates))
	for k := range c.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Catalog) Style() Style { return c.style }

// Raw returns the template for key, or a visible fallback naming the key
// when it is missing.
func (c *Catalog) Raw(key string) string {
	if template, ok := c.templates[key]; ok {
		return template
	}
	return "&cnot found message that match this translation key: " + key
}

// Render applies the catalog's colour style to already composed text.
func (c *Catalog) Render(text string) string {
	return Render(text, c.style)
}

// Format fills %0..%n with args and renders colour codes.
func (c *Catalog) Format(key string, args ...any) string {
	return c.Render(Substitute(c.Raw(key), args...))
}

// Substitute replaces %i with args[i] in one pass over template, so text
// coming from an argument is never substituted again. The longest run of
// digits naming an existing argument wins; a placeholder with no matching
// argument is left as is.
func Substitute(template string, args ...any) string {
	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			b.WriteByte(template[i])
			continue
		}

		end := i + 1
		for end < len(template) && template[end] >= '0' && template[end] <= '9' {
			end++
		}
		matched := false
		for stop := end; stop > i+1; stop-- {
			n, err := strconv.Atoi(template[i+1 : stop])
			if err == nil && n < len(args) {
				b.WriteString(fmt.Sprint(args[n]))
				i = stop - 1
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte('%')
		}
	}
	return b.String()
}
