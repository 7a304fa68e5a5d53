// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package notion

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// Property is one typed value from a page's property bag. The concrete
// type is one of Title, RichText, Number, Select, Relation, Checkbox, Date
// or Unsupported. Decoding happens once at the API boundary; extractors
// switch on the concrete type instead of casting untyped maps.
type Property interface {
	// Type returns the Notion property type name ("title", "number", ...).
	Type() string
	// wire returns the request payload for this value, or nil when the
	// value cannot be written back.
	wire() any
}

// Title is the page title property.
type Title struct{ Text string }

// RichText is a text property. Formula results of type string decode to
// RichText as well.
type RichText struct{ Text string }

// Number is a numeric property. Valid is false for an empty cell.
type Number struct {
	Value float64
	Valid bool
}

// Select is a select or status property.
type Select struct{ Name string }

// Relation holds related page ids. HasMore is set when Notion truncated
// the list (more than 25 relations on a page object).
type Relation struct {
	IDs     []string
	HasMore bool
}

// Checkbox is a boolean property.
type Checkbox struct{ Checked bool }

// Date is a date or date range. Start and End keep Notion's ISO-8601 text.
type Date struct {
	Start string
	End   string
}

// Unsupported keeps a property type the engine does not interpret
// (people, files, rollup, ...). Its raw JSON is retained for debugging.
type Unsupported struct {
	Kind string
	Raw  json.RawMessage
}

func (Title) Type() string { return "title" }
func (RichText) Type() string { return "rich_text" }
func (Number) Type() string { return "number" }
func (Select) Type() string { return "select" }
func (Relation) Type() string { return "relation" }
func (Checkbox) Type() string { return "checkbox" }
func (Date) Type() string { return "date" }
func (u Unsupported) Type() string { return u.Kind }

func (t Title) wire() any    { return map[string]any{"title": textRuns(t.Text)} }
func (t RichText) wire() any { return map[string]any{"rich_text": textRuns(t.Text)} }

func (n Number) wire() any {
	if !n.Valid {
		return map[string]any{"number": nil}
	}
	return map[string]any{"number": n.Value}
}

func (s Select) wire() any {
	if s.Name == "" {
		return map[string]any{"select": nil}
	}
	return map[string]any{"select": map[string]string{"name": s.Name}}
}

func (r Relation) wire() any {
	refs := make([]map[string]string, 0, len(r.IDs))
	for _, id := range r.IDs {
		refs = append(refs, map[string]string{"id": id})
	}
	return map[string]any{"relation": refs}
}

func (c Checkbox) wire() any { return map[string]any{"checkbox": c.Checked} }

func (d Date) wire() any {
	if d.Start == "" {
		return map[string]any{"date": nil}
	}
	date := map[string]any{"start": d.Start}
	if d.End != "" {
		date["end"] = d.End
	}
	return map[string]any{"date": date}
}

func (Unsupported) wire() any { return nil }

// maxTextRun is Notion's limit for a single rich text run.
const maxTextRun = 2000

// textRuns splits s into runs of at most maxTextRun bytes, cutting only at
// rune boundaries.
func textRuns(s string) []map[string]any {
	runs := make([]map[string]any, 0, len(s)/maxTextRun+1)
	for len(s) > maxTextRun {
		n := maxTextRun
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		if n == 0 {
			n = maxTextRun
		}
		runs = append(runs, textRun(s[:n]))
		s = s[n:]
	}
	if s != "" || len(runs) == 0 {
		runs = append(runs, textRun(s))
	}
	return runs
}

func textRun(s string) map[string]any {
	return map[string]any{"type": "text", "text": map[string]string{"content": s}}
}

// DateOf formats t as a Notion date (no time component).
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return Date{Start: t.UTC().Format("2006-01-02")}
}

// NumberOf wraps a float as a valid Number.
func NumberOf(v float64) Number { return Number{Value: v, Valid: true} }

// Page is a decoded Notion page.
type Page struct {
	ID             string
	Properties     map[string]Property
	CreatedTime    time.Time
	LastEditedTime time.Time
	Archived       bool
}

// NewPage builds a page from already typed properties. It is used by the
// in-memory client and by tests.
func NewPage(id string, props map[string]Property) *Page {
	if props == nil {
		props = map[string]Property{}
	}
	return &Page{ID: id, Properties: props}
}

// EncodeProperties renders properties as a Notion request payload.
// Unsupported values are dropped.
func EncodeProperties(props map[string]Property) map[string]any {
	out := make(map[string]any, len(props))
	for key, prop := range props {
		if prop == nil {
			continue
		}
		if w := prop.wire(); w != nil {
			out[key] = w
		}
	}
	return out
}

// Wire types for decoding API responses.

type wirePage struct {
	Object         string                     `json:"object"`
	ID             string                     `json:"id"`
	CreatedTime    time.Time                  `json:"created_time"`
	LastEditedTime time.Time                  `json:"last_edited_time"`
	Archived       bool                       `json:"archived"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

type wireText struct {
	PlainText string `json:"plain_text"`
}

type wireProperty struct {
	Type     string     `json:"type"`
	Title    []wireText `json:"title"`
	RichText []wireText `json:"rich_text"`
	Number   *float64   `json:"number"`
	Select   *struct {
		Name string `json:"name"`
	} `json:"select"`
	Status *struct {
		Name string `json:"name"`
	} `json:"status"`
	Relation []struct {
		ID string `json:"id"`
	} `json:"relation"`
	HasMore  bool `json:"has_more"`
	Checkbox bool `json:"checkbox"`
	Date     *struct {
		Start string  `json:"start"`
		End   *string `json:"end"`
	} `json:"date"`
	Formula *struct {
		Type    string   `json:"type"`
		String  *string  `json:"string"`
		Number  *float64 `json:"number"`
		Boolean *bool    `json:"boolean"`
	} `json:"formula"`
}

// UnmarshalJSON decodes a Notion page object. Unknown or malformed
// properties become Unsupported so one odd column never fails a page.
func (p *Page) UnmarshalJSON(data []byte) error {
	var wp wirePage
	if err := json.Unmarshal(data, &wp); err != nil {
		return err
	}
	p.ID = wp.ID
	p.CreatedTime = wp.CreatedTime
	p.LastEditedTime = wp.LastEditedTime
	p.Archived = wp.Archived
	p.Properties = make(map[string]Property, len(wp.Properties))
	for key, raw := range wp.Properties {
		p.Properties[key] = decodeProperty(raw)
	}
	return nil
}

func decodeProperty(raw json.RawMessage) Property {
	var wp wireProperty
	if err := json.Unmarshal(raw, &wp); err != nil {
		return Unsupported{Kind: "invalid", Raw: raw}
	}

	switch wp.Type {
	case "title":
		return Title{Text: joinText(wp.Title)}
	case "rich_text":
		return RichText{Text: joinText(wp.RichText)}
	case "number":
		if wp.Number == nil {
			return Number{}
		}
		return NumberOf(*wp.Number)
	case "select":
		if wp.Select == nil {
			return Select{}
		}
		return Select{Name: wp.Select.Name}
	case "status":
		if wp.Status == nil {
			return Select{}
		}
		return Select{Name: wp.Status.Name}
	case "relation":
		ids := make([]string, 0, len(wp.Relation))
		for _, r := range wp.Relation {
			ids = append(ids, r.ID)
		}
		return Relation{IDs: ids, HasMore: wp.HasMore}
	case "checkbox":
		return Checkbox{Checked: wp.Checkbox}
	case "date":
		if wp.Date == nil {
			return Date{}
		}
		d := Date{Start: wp.Date.Start}
		if wp.Date.End != nil {
			d.End = *wp.Date.End
		}
		return d
	case "formula":
		if wp.Formula != nil {
			switch {
			case wp.Formula.String != nil:
				return RichText{Text: *wp.Formula.String}
			case wp.Formula.Number != nil:
				return NumberOf(*wp.Formula.Number)
			case wp.Formula.Boolean != nil:
				return Checkbox{Checked: *wp.Formula.Boolean}
			}
		}
	}
	return Unsupported{Kind: wp.Type, Raw: raw}
}

func joinText(runs []wireText) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.PlainText)
	}
	return b.String()
}
