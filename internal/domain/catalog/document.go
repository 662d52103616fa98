package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/theduckylittle/registry/internal/domain"
)

// layerSchema describes the "document to index" payload built from a catalog record.
const layerSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "required": ["title", "layer_geoshape"],
  "properties": {
    "title": {"type": "string"},
    "abstract": {"type": ["string", "null"]},
    "layer_date": {"type": ["string", "null"]},
    "layer_originator": {"type": ["string", "null"]},
    "layer_identifier": {"type": ["string", "null"]},
    "bbox": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4},
    "min_x": {"type": "number"},
    "min_y": {"type": "number"},
    "max_x": {"type": "number"},
    "max_y": {"type": "number"},
    "layer_geoshape": {
      "type": "object",
      "required": ["type", "coordinates"],
      "properties": {
        "type": {"enum": ["envelope"]},
        "coordinates": {
          "type": "array",
          "minItems": 2,
          "maxItems": 2,
          "items": {
            "type": "array",
            "minItems": 2,
            "maxItems": 2,
            "items": {"type": "number"}
          }
        }
      }
    }
  }
}`

var layerSchemaLoader = gojsonschema.NewStringLoader(layerSchema)

// Document is a validated layer document ready to be indexed.
type Document struct {
	id     string
	fields map[string]any
}

// ParseDocument validates raw JSON against the layer schema.
// Documents without a layer_identifier get a generated one.
// Non-ASCII runes are dropped from the title.
func ParseDocument(raw []byte) (Document, error) {
	result, err := gojsonschema.Validate(layerSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Document{}, fmt.Errorf("%w: %s", domain.ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	id, _ := fields[FieldIdentifier].(string)
	if id == "" {
		id = uuid.NewString()
		fields[FieldIdentifier] = id
	}
	if title, ok := fields[FieldTitle].(string); ok {
		fields[FieldTitle] = StripNonASCII(title)
	}

	return Document{id: id, fields: fields}, nil
}

// ID returns the layer identifier, used as the engine document id.
func (d Document) ID() string { return d.id }

// Title returns the document title.
func (d Document) Title() string {
	s, _ := d.fields[FieldTitle].(string)
	return s
}

// Fields returns the document body.
func (d Document) Fields() map[string]any { return d.fields }

// StripNonASCII drops every rune outside the ASCII range.
func StripNonASCII(s string) string {
	out, _, err := transform.String(runes.Remove(runes.Predicate(notASCII)), s)
	if err != nil {
		return s
	}
	return out
}

func notASCII(r rune) bool { return r > unicode.MaxASCII }
