// Package validation parses validation and documentation struct tags. The same
// metadata drives go-playground/validator at runtime and the reflection enricher
// when documentation is generated.
package validation

import (
	"reflect"
	"strconv"
	"strings"
)

const (
	trueValue = "true"

	ParamPath   = "path"
	ParamQuery  = "query"
	ParamHeader = "header"
	ParamForm   = "form"
	ParamBody   = "body"
)

// TagInfo represents parsed validation tag information from a struct field
type TagInfo struct {
	Name        string            // Go field name
	JSONName    string            // JSON field name (from json tag)
	ParamType   string            // Parameter type: path, query, header, form, body
	ParamName   string            // Parameter name for path/query/header params
	Required    bool              // Whether field is required
	Constraints map[string]string // Validation constraints from validate tag
	Title       string            // Display name from title tag
	Description string            // Documentation from doc tag
	Notes       string            // Additional remarks from notes tag
	Links       []string          // External references from link tag
	Example     string            // Example value from example tag
	Tags        map[string]string // All struct tags for reference
}

// ParseValidationTags extracts validation metadata from the exported fields of a struct type.
func ParseValidationTags(t reflect.Type) []TagInfo {
	var tags []TagInfo

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return tags
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tags = append(tags, ParseField(field))
	}

	return tags
}

// ParseField extracts validation and documentation metadata from a single struct field.
func ParseField(field reflect.StructField) TagInfo {
	info := TagInfo{
		Name:        field.Name,
		Constraints: make(map[string]string),
		Tags:        make(map[string]string),
	}

	parseAllStructTags(field.Tag, info.Tags)

	if json := field.Tag.Get("json"); json != "" {
		parts := strings.Split(json, ",")
		if parts[0] != "" {
			info.JSONName = parts[0]
		}
		for _, part := range parts[1:] {
			if strings.TrimSpace(part) == "omitempty" {
				info.Tags["omitempty"] = trueValue
			}
		}
	}

	info.ParamType, info.ParamName = parseParameterInfo(field.Tag)

	if validate := field.Tag.Get("validate"); validate != "" {
		parseValidateTag(validate, info.Constraints)
	}

	info.Required = isFieldRequired(info.Constraints, info.Tags, info.ParamType, info.JSONName)

	info.Title = field.Tag.Get("title")
	if doc := field.Tag.Get("doc"); doc != "" {
		info.Description = doc
	} else {
		info.Description = field.Tag.Get("description")
	}
	info.Notes = field.Tag.Get("notes")
	info.Example = field.Tag.Get("example")

	if link := field.Tag.Get("link"); link != "" {
		for _, l := range strings.Split(link, ",") {
			if l = strings.TrimSpace(l); l != "" {
				info.Links = append(info.Links, l)
			}
		}
	}

	return info
}

func parseAllStructTags(tag reflect.StructTag, tags map[string]string) {
	for _, k := range []string{
		"json", "validate", "title", "doc", "description", "notes", "link", "example",
		"param", "query", "header", "form",
	} {
		if v := tag.Get(k); v != "" {
			tags[k] = v
		}
	}
}

func parseParameterInfo(tag reflect.StructTag) (paramType, paramName string) {
	if param := tag.Get("param"); param != "" {
		return ParamPath, param
	}
	if query := tag.Get("query"); query != "" {
		return ParamQuery, query
	}
	if header := tag.Get("header"); header != "" {
		return ParamHeader, header
	}
	if form := tag.Get("form"); form != "" {
		return ParamForm, form
	}
	return ParamBody, ""
}

// parseValidateTag splits a validate tag into constraints. Flags such as
// "required" map to "true"; key=value pairs keep their value.
func parseValidateTag(validate string, constraints map[string]string) {
	for _, part := range strings.Split(validate, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, found := strings.Cut(part, "=")
		if !found {
			constraints[part] = trueValue
			continue
		}
		constraints[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
}

func isFieldRequired(constraints, tags map[string]string, paramType, jsonName string) bool {
	if _, skip := constraints["omitempty"]; skip {
		return false
	}
	if _, skip := tags["omitempty"]; skip {
		return false
	}

	if _, required := constraints["required"]; required {
		return true
	}

	// Path parameters are always required
	if paramType == ParamPath {
		return true
	}

	// Body fields without omitempty are required unless explicitly ignored
	return paramType == ParamBody && jsonName != "-"
}

// IsRequired returns true if the field has a required constraint
func (t *TagInfo) IsRequired() bool {
	return t.Required
}

// Min returns the lower bound from a min or gte constraint.
func (t *TagInfo) Min() (float64, bool) {
	return t.number("min", "gte")
}

// Max returns the upper bound from a max or lte constraint.
func (t *TagInfo) Max() (float64, bool) {
	return t.number("max", "lte")
}

func (t *TagInfo) number(keys ...string) (float64, bool) {
	for _, k := range keys {
		if raw, ok := t.Constraints[k]; ok {
			if val, err := strconv.ParseFloat(raw, 64); err == nil {
				return val, true
			}
		}
	}
	return 0, false
}

// Enum returns the values of a oneof constraint.
func (t *TagInfo) Enum() ([]string, bool) {
	if enum, ok := t.Constraints["oneof"]; ok {
		values := strings.Fields(enum)
		if len(values) > 0 {
			return values, true
		}
	}
	return nil, false
}

// Pattern returns the regex pattern constraint if present
func (t *TagInfo) Pattern() (string, bool) {
	pattern, ok := t.Constraints["regexp"]
	return pattern, ok
}

// HasFormat returns true if the field has a specific format constraint
func (t *TagInfo) HasFormat(format string) bool {
	constraint, exists := t.Constraints[format]
	return exists && constraint == trueValue
}
