// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package notion

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/atwsync/internal/logging"
)

// UnknownName is returned by Name when a page has no usable title.
const UnknownName = "Unknown"

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

var (
	// relationCount matches a relation that surfaced only as a count
	// ("3 items", "1 relation").
	relationCount = regexp.MustCompile(`^\d+ (items?|relations?)$`)
	// bareID matches a single page id with or without dashes.
	bareID = regexp.MustCompile(`^[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12}$`)
)

// RelationRef is the result of reading a relation property.
// When Unresolved is true, IDs is empty or partial and callers must keep
// their existing local value rather than overwrite it.
//
// Names holds the related page titles when the relation surfaced as plain
// text instead of ids.
type RelationRef struct {
	IDs        []string
	Names      []string
	Unresolved bool
}

// First returns the first related id, or "".
func (r RelationRef) First() string {
	if len(r.IDs) == 0 {
		return ""
	}
	return r.IDs[0]
}

// Name returns the page's display name: the "Name" property, else the
// "Title" property, else any title-typed property, else UnknownName.
func Name(page *Page) string {
	if page == nil {
		return UnknownName
	}
	for _, key := range []string{"Name", "Title"} {
		if s := textValue(page.Properties[key]); s != "" {
			return s
		}
	}
	for _, prop := range page.Properties {
		if t, ok := prop.(Title); ok {
			if s := clean(t.Text); s != "" {
				return s
			}
		}
	}
	return UnknownName
}

// String returns the text form of a property, or "" when the key is
// missing or the value is blank or "N/A".
func String(page *Page, key string) string {
	prop, ok := lookup(page, key)
	if !ok {
		return ""
	}
	switch v := prop.(type) {
	case Title, RichText, Select:
		return textValue(v)
	case Number:
		if !v.Valid {
			return ""
		}
		return strconv.FormatFloat(v.Value, 'f', -1, 64)
	case Checkbox:
		return strconv.FormatBool(v.Checked)
	case Date:
		return v.Start
	case Relation:
		return strings.Join(v.IDs, ", ")
	default:
		warnType(page, key, prop)
		return ""
	}
}

// NumberValue returns a numeric property. Text properties holding a number are
// parsed. The second result is false when no number is available.
func NumberValue(page *Page, key string) (float64, bool) {
	prop, ok := lookup(page, key)
	if !ok {
		return 0, false
	}
	switch v := prop.(type) {
	case Number:
		return v.Value, v.Valid
	case RichText, Title, Select:
		s := textValue(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			logging.Warn().Str("page_id", page.ID).Str("property", key).Str("value", s).Msg("Property is not a number")
			return 0, false
		}
		return f, true
	default:
		warnType(page, key, prop)
		return 0, false
	}
}

// Int is NumberValue rounded toward zero. Values outside the int range
// are rejected.
func Int(page *Page, key string) (int, bool) {
	f, ok := integral(page, key, math.MinInt, math.MaxInt)
	return int(f), ok
}

// Int64 is NumberValue as an int64. Values outside the int64 range are
// rejected.
func Int64(page *Page, key string) (int64, bool) {
	f, ok := integral(page, key, math.MinInt64, math.MaxInt64)
	return int64(f), ok
}

// integral truncates a number and checks it against [lo, hi]. float64(hi)
// rounds up to a power of two, so the upper bound is exclusive.
func integral(page *Page, key string, lo, hi float64) (float64, bool) {
	f, ok := NumberValue(page, key)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	if f < lo || f >= hi {
		logging.Debug().Str("page_id", page.ID).Str("property", key).Float64("value", f).Msg("Number out of integer range; ignoring")
		return 0, false
	}
	return f, true
}

// Bool reads a checkbox. Text values "true"/"yes"/"active" count as true.
func Bool(page *Page, key string) (bool, bool) {
	prop, ok := lookup(page, key)
	if !ok {
		return false, false
	}
	switch v := prop.(type) {
	case Checkbox:
		return v.Checked, true
	case RichText, Select, Title:
		switch strings.ToLower(textValue(v)) {
		case "":
			return false, false
		case "true", "yes", "active", "1":
			return true, true
		case "false", "no", "inactive", "0":
			return false, true
		}
		logging.Warn().Str("page_id", page.ID).Str("property", key).Msg("Property is not a boolean")
		return false, false
	default:
		warnType(page, key, prop)
		return false, false
	}
}

// DateValue reads a date property or a text property holding a date.
// A leading "@" (Notion's inline mention rendering) is stripped.
func DateValue(page *Page, key string) (time.Time, bool) {
	prop, ok := lookup(page, key)
	if !ok {
		return time.Time{}, false
	}
	var raw string
	switch v := prop.(type) {
	case Date:
		raw = v.Start
	case RichText, Title, Select:
		raw = textValue(v)
	default:
		warnType(page, key, prop)
		return time.Time{}, false
	}
	if raw == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(raw)
	if err != nil {
		logging.Warn().Str("page_id", page.ID).Str("property", key).Str("value", raw).Msg("Unparsable date")
		return time.Time{}, false
	}
	return t, true
}

// ParseDate accepts RFC 3339, "2006-01-02" and "January 2, 2006", with an
// optional leading "@".
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Relations reads a relation property.
//
// A truncated relation (has_more) or a text value that only reports a
// count ("3 items") is Unresolved. A text value holding a single page id
// resolves to that id. A missing key is an empty, resolved reference.
func Relations(page *Page, key string) RelationRef {
	prop, ok := lookup(page, key)
	if !ok {
		return RelationRef{}
	}
	switch v := prop.(type) {
	case Relation:
		ids := make([]string, 0, len(v.IDs))
		for _, id := range v.IDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return RelationRef{IDs: ids, Unresolved: v.HasMore}
	case RichText, Title, Select:
		s := strings.TrimSpace(textValue(v))
		switch {
		case s == "":
			return RelationRef{}
		case bareID.MatchString(s):
			return RelationRef{IDs: []string{s}}
		case IsUnresolvedText(s):
			logging.Debug().Str("page_id", page.ID).Str("property", key).Str("value", s).Msg("Relation surfaced as a count; treating as unresolved")
			return RelationRef{Unresolved: true}
		}
		return RelationRef{Names: splitNames(s)}
	default:
		warnType(page, key, prop)
		return RelationRef{Unresolved: true}
	}
}

// IsUnresolvedText reports whether a text value is a relation placeholder
// rather than a real name: a count ("2 relations") or a bare page id.
func IsUnresolvedText(s string) bool {
	s = strings.TrimSpace(s)
	return relationCount.MatchString(s) || bareID.MatchString(s)
}

// splitNames splits a comma separated list of page titles.
func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && !IsUnresolvedText(p) {
			names = append(names, p)
		}
	}
	return names
}

func lookup(page *Page, key string) (Property, bool) {
	if page == nil {
		return nil, false
	}
	prop, ok := page.Properties[key]
	if !ok || prop == nil {
		return nil, false
	}
	return prop, true
}

func textValue(prop Property) string {
	switch v := prop.(type) {
	case Title:
		return clean(v.Text)
	case RichText:
		return clean(v.Text)
	case Select:
		return clean(v.Name)
	}
	return ""
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "N/A") {
		return ""
	}
	return s
}

func warnType(page *Page, key string, prop Property) {
	logging.Warn().
		Str("page_id", page.ID).
		Str("property", key).
		Str("type", prop.Type()).
		Msg("Unexpected property type")
}
