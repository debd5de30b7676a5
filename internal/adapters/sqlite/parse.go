package sqlite

import (
	"bytes"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"notegraph/internal/domain"
)

// DefaultRel labels links that carry no explicit relation
const DefaultRel = "links_to"

// Link pattern for Obsidian wiki links: [[Target]], [[Target|alias]], [[Target#heading]]
var linkPattern = regexp.MustCompile(`\[\[([^\[\]\n]+)\]\]`)

// Inline field carrying a relation: "supports:: [[B]]", optionally in a list item
var fieldPattern = regexp.MustCompile(`^\s*(?:[-*+]\s+)?([A-Za-z][\w-]*)::\s*(.*)$`)

// frontmatter holds the note attributes read from YAML frontmatter
type frontmatter struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Entity  string `yaml:"entity"`
	Layer   string `yaml:"layer"`
	Status  string `yaml:"status"`
	Created string `yaml:"created"`
	Updated string `yaml:"updated"`
}

// attribute keys that never carry links
var reservedKeys = map[string]bool{
	"id": true, "title": true, "summary": true, "entity": true, "layer": true,
	"status": true, "created": true, "updated": true, "aliases": true, "tags": true,
}

// parseNote builds the note row and its typed links from file content.
// Malformed frontmatter is ignored rather than failing the note.
func parseNote(relPath string, content []byte, mtime time.Time) (domain.Note, []domain.TypedLink) {
	fmRaw, body := splitFrontmatter(content)

	var fm frontmatter
	var fields map[string]any
	if fmRaw != nil {
		if err := yaml.Unmarshal(fmRaw, &fm); err != nil {
			fm = frontmatter{}
		}
		if err := yaml.Unmarshal(fmRaw, &fields); err != nil {
			fields = nil
		}
	}

	note := domain.Note{
		Path:    relPath,
		NoteID:  fm.ID,
		Created: fm.Created,
		Updated: fm.Updated,
		Title:   fm.Title,
		Summary: fm.Summary,
		Entity:  fm.Entity,
		Layer:   fm.Layer,
		Status:  fm.Status,
	}
	if note.Title == "" {
		note.Title = noteTitle(relPath)
	}
	if note.Updated == "" {
		note.Updated = mtime.UTC().Format(time.RFC3339)
	}

	var links []domain.TypedLink
	add := func(rel, raw, inner string) {
		target := cleanTarget(inner)
		if target == "" {
			return
		}
		links = append(links, domain.TypedLink{
			FromPath:   relPath,
			Rel:        rel,
			ToTarget:   target,
			ToWikilink: raw,
			Position:   len(links),
		})
	}

	for _, key := range sortedKeys(fields) {
		if reservedKeys[strings.ToLower(key)] {
			continue
		}
		for _, s := range stringValues(fields[key]) {
			for _, m := range linkPattern.FindAllStringSubmatch(s, -1) {
				add(normalizeRel(key), m[0], m[1])
			}
		}
	}

	for _, line := range strings.Split(string(body), "\n") {
		rel, value := DefaultRel, ""
		if m := fieldPattern.FindStringSubmatch(line); m != nil {
			rel, value = normalizeRel(m[1]), m[2]
		}
		for _, loc := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
			if loc[0] > 0 && line[loc[0]-1] == '!' {
				continue // embed, not a link
			}
			linkRel := DefaultRel
			if value != "" && loc[0] >= len(line)-len(value) {
				linkRel = rel
			}
			add(linkRel, line[loc[0]:loc[1]], line[loc[2]:loc[3]])
		}
	}

	return note, links
}

// splitFrontmatter separates a leading "---" YAML block from the body
func splitFrontmatter(content []byte) ([]byte, []byte) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}
	rest := content[bytes.IndexByte(content, '\n')+1:]
	for offset := 0; offset < len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		line := rest[offset:]
		next := len(rest)
		if end >= 0 {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if string(bytes.TrimRight(line, "\r ")) == "---" {
			return rest[:offset], rest[next:]
		}
		offset = next
	}
	return nil, content
}

// cleanTarget strips the alias, heading and block parts of a link
func cleanTarget(inner string) string {
	if i := strings.IndexByte(inner, '|'); i >= 0 {
		inner = inner[:i]
	}
	if i := strings.IndexAny(inner, "#^"); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner)
}

func normalizeRel(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// noteTitle is the file name without extension
func noteTitle(relPath string) string {
	return strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
}

// noteBasename is the lowercase lookup key for basename resolution
func noteBasename(relPath string) string {
	return strings.ToLower(noteTitle(relPath))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringValues flattens a frontmatter value into its string leaves
func stringValues(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		// unquoted [[Target]] reads as a sequence holding one single-string sequence
		if len(val) == 1 {
			if inner, ok := val[0].([]any); ok && len(inner) == 1 {
				if s, ok := inner[0].(string); ok {
					return []string{"[[" + s + "]]"}
				}
			}
		}
		var out []string
		for _, item := range val {
			out = append(out, stringValues(item)...)
		}
		return out
	default:
		return nil
	}
}
