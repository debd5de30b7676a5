package sqlite

import (
	"strings"
	"testing"
	"time"

	"notegraph/internal/domain"
)

func TestParseNote_Frontmatter(t *testing.T) {
	content := []byte(`---
id: "n-001"
title: Theory of Mirrors
summary: How mirrors stay consistent
entity: concept
layer: core
status: draft
created: "2024-01-05"
supports: "[[Consistency]]"
related:
  - "[[Runs]]"
  - plain text
tags: ["[[NotALink]]"]
---
Body text.
`)
	mtime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	note, links := parseNote("concepts/mirrors.md", content, mtime)

	want := domain.Note{
		Path:    "concepts/mirrors.md",
		NoteID:  "n-001",
		Created: "2024-01-05",
		Updated: "2026-01-01T00:00:00Z",
		Title:   "Theory of Mirrors",
		Summary: "How mirrors stay consistent",
		Entity:  "concept",
		Layer:   "core",
		Status:  "draft",
	}
	if note != want {
		t.Errorf("note = %+v\nwant %+v", note, want)
	}

	if len(links) != 2 {
		t.Fatalf("expected 2 frontmatter links, got %+v", links)
	}
	if links[0].Rel != "related" || links[0].ToTarget != "Runs" || links[0].Position != 0 {
		t.Errorf("unexpected first link %+v", links[0])
	}
	if links[1].Rel != "supports" || links[1].ToTarget != "Consistency" || links[1].Position != 1 {
		t.Errorf("unexpected second link %+v", links[1])
	}
}

func TestParseNote_UnquotedFrontmatterLinks(t *testing.T) {
	content := []byte("---\nsupports: [[B]]\nrelated:\n  - [[C]]\n  - [[D|Dee]]\n---\n")
	_, links := parseNote("a.md", content, time.Unix(0, 0))

	want := []domain.TypedLink{
		{FromPath: "a.md", Rel: "related", ToTarget: "C", ToWikilink: "[[C]]", Position: 0},
		{FromPath: "a.md", Rel: "related", ToTarget: "D", ToWikilink: "[[D|Dee]]", Position: 1},
		{FromPath: "a.md", Rel: "supports", ToTarget: "B", ToWikilink: "[[B]]", Position: 2},
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %+v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestStringValues(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "string", in: "[[A]]", want: []string{"[[A]]"}},
		{name: "unquoted link", in: []any{[]any{"A"}}, want: []string{"[[A]]"}},
		{name: "list of unquoted links", in: []any{[]any{[]any{"A"}}, []any{[]any{"B"}}}, want: []string{"[[A]]", "[[B]]"}},
		{name: "plain list", in: []any{"x", "y"}, want: []string{"x", "y"}},
		{name: "number", in: 3, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stringValues(tt.in)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || len(got) != len(tt.want) {
				t.Errorf("stringValues(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseNote_BodyLinks(t *testing.T) {
	content := []byte(`# Heading
See [[Alpha]] and [[Beta|the beta note]].
- supports:: [[Gamma#Section]], [[Delta]]
refutes:: [[folder/Epsilon]]
An embed ![[diagram.png]] is skipped.
Broken [[ ]] link.
`)
	note, links := parseNote("a.md", content, time.Unix(0, 0))

	if note.Title != "a" {
		t.Errorf("title should default to file name, got %q", note.Title)
	}

	want := []domain.TypedLink{
		{FromPath: "a.md", Rel: DefaultRel, ToTarget: "Alpha", ToWikilink: "[[Alpha]]", Position: 0},
		{FromPath: "a.md", Rel: DefaultRel, ToTarget: "Beta", ToWikilink: "[[Beta|the beta note]]", Position: 1},
		{FromPath: "a.md", Rel: "supports", ToTarget: "Gamma", ToWikilink: "[[Gamma#Section]]", Position: 2},
		{FromPath: "a.md", Rel: "supports", ToTarget: "Delta", ToWikilink: "[[Delta]]", Position: 3},
		{FromPath: "a.md", Rel: "refutes", ToTarget: "folder/Epsilon", ToWikilink: "[[folder/Epsilon]]", Position: 4},
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %+v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestParseNote_MalformedFrontmatter(t *testing.T) {
	content := []byte("---\ntitle: [unclosed\n---\nlinks to [[X]]\n")
	note, links := parseNote("bad.md", content, time.Unix(0, 0))
	if note.Title != "bad" {
		t.Errorf("expected fallback title, got %q", note.Title)
	}
	if len(links) != 1 || links[0].ToTarget != "X" {
		t.Errorf("body links should still be parsed, got %+v", links)
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   string
		wantBody string
	}{
		{name: "none", content: "hello", wantFM: "", wantBody: "hello"},
		{name: "simple", content: "---\na: 1\n---\nbody", wantFM: "a: 1\n", wantBody: "body"},
		{name: "crlf", content: "---\r\na: 1\r\n---\r\nbody", wantFM: "a: 1\r\n", wantBody: "body"},
		{name: "unterminated", content: "---\na: 1\n", wantFM: "", wantBody: "---\na: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := splitFrontmatter([]byte(tt.content))
			if string(fm) != tt.wantFM {
				t.Errorf("frontmatter = %q, want %q", fm, tt.wantFM)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestCleanTarget(t *testing.T) {
	tests := map[string]string{
		"Note":             "Note",
		" Note ":           "Note",
		"Note|alias":       "Note",
		"Note#Heading":     "Note",
		"Note^block":       "Note",
		"dir/Note#H|alias": "dir/Note",
		"#Heading":         "",
	}
	for in, want := range tests {
		if got := cleanTarget(in); got != want {
			t.Errorf("cleanTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
