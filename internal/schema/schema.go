// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema derives a JSON Schema from the yaml and docdesc tags of Go structs.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// Generator builds JSON Schema documents from struct definitions.
type Generator struct {
	title       string
	description string
}

// NewGenerator creates a Generator that stamps title and description on the root schema.
func NewGenerator(title, description string) *Generator {
	return &Generator{title: title, description: description}
}

// Generate returns the schema of def, which must be a struct or a pointer to one.
func (g *Generator) Generate(def any) (map[string]any, error) {
	t := reflect.TypeOf(def)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %v", t)
	}

	root := g.object(t)
	root["$schema"] = draft

	if g.title != "" {
		root["title"] = g.title
	}

	if g.description != "" {
		root["description"] = g.description
	}

	return root, nil
}

// WriteJSONSchema writes the indented schema of def to w.
func (g *Generator) WriteJSONSchema(w io.Writer, def any) error {
	s, err := g.Generate(def)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

func (g *Generator) object(t reflect.Type) map[string]any {
	properties := make(map[string]any)
	required := []string{}

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, optional, ok := yamlName(field)
		if !ok {
			continue
		}

		prop := g.property(field.Type)
		if desc := field.Tag.Get("docdesc"); desc != "" {
			prop["description"] = desc
		}

		properties[name] = prop

		if !optional {
			required = append(required, name)
		}
	}

	s := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}

	if len(required) > 0 {
		s["required"] = required
	}

	return s
}

func (g *Generator) property(t reflect.Type) map[string]any {
	switch t.Kind() {
	case reflect.Ptr:
		return g.property(t.Elem())
	case reflect.Struct:
		return g.object(t)
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": g.property(t.Elem()),
		}
	case reflect.Map:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": g.property(t.Elem()),
		}
	}

	return map[string]any{"type": jsonType(t)}
}

// yamlName returns the key of a field and whether it is optional.
// Fields tagged `yaml:"-"` or without a yaml tag are skipped.
func yamlName(field reflect.StructField) (string, bool, bool) {
	tag, ok := field.Tag.Lookup("yaml")
	if !ok || tag == "-" {
		return "", false, false
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(field.Name)
	}

	return name, strings.Contains(opts, "omitempty"), true
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	}

	return "string"
}
