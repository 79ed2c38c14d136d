package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ziadkadry99/onepage/internal/apperr"
)

// documentSchema describes the Document shape accepted from outside a session.
// Optional content may be absent; renderers fill in defaults.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["layout", "appInfo"],
  "properties": {
    "layout": {"type": "string", "minLength": 1},
    "theme": {
      "type": "object",
      "properties": {
        "primaryColor": {"type": "string"},
        "secondaryColor": {"type": "string"},
        "backgroundColor": {"type": "string"},
        "textColor": {"type": "string"}
      },
      "additionalProperties": false
    },
    "appInfo": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "icon": {"type": "string"},
        "name": {"type": "string"},
        "tagline": {"type": "string"},
        "vendor": {"type": "string"},
        "rating": {"type": "number", "minimum": 0, "maximum": 5},
        "reviewCount": {"type": "integer", "minimum": 0},
        "installCount": {"type": "string"},
        "badge": {"type": "string"}
      },
      "additionalProperties": false
    },
    "media": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["type", "url"],
        "properties": {
          "type": {"enum": ["image", "video"]},
          "url": {"type": "string"},
          "thumbnail": {"type": "string"}
        },
        "additionalProperties": false
      }
    },
    "tabs": {
      "type": "object",
      "properties": {
        "overview": {
          "type": "object",
          "properties": {
            "summary": {"type": "string"},
            "features": {
              "type": ["array", "null"],
              "items": {
                "type": "object",
                "required": ["title"],
                "properties": {
                  "title": {"type": "string"},
                  "description": {"type": "string"}
                },
                "additionalProperties": false
              }
            },
            "benefits": {"type": ["array", "null"], "items": {"type": "string"}}
          },
          "additionalProperties": false
        }
      }
    },
    "sidebar": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string"},
          "items": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["label"],
              "properties": {
                "label": {"type": "string"},
                "value": {"type": "string"},
                "href": {"type": "string"},
                "icon": {"type": "string"}
              },
              "additionalProperties": false
            }
          }
        },
        "additionalProperties": false
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// Validate checks raw JSON against the Document schema and decodes it.
func Validate(raw []byte) (Document, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Document{}, apperr.InvalidInput("document is not valid JSON", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Document{}, apperr.InvalidInput("document failed validation",
			fmt.Errorf("%s", strings.Join(msgs, "; ")))
	}

	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return Document{}, apperr.InvalidInput("decoding document", err)
	}
	if err := d.check(); err != nil {
		return Document{}, apperr.InvalidInput("document failed validation", err)
	}
	return d, nil
}

// Check validates d the way Validate validates raw JSON.
func Check(d Document) error {
	raw, err := d.JSON()
	if err != nil {
		return apperr.InvalidInput("encoding document", err)
	}
	_, err = Validate(raw)
	return err
}
