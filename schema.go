package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const shapeSchemaURL = "https://randomize-command-codes.local/implant-config.schema.json"

// shapeSchemaText describes the only part of the configuration this tool
// depends on. Everything else is passed through untouched.
const shapeSchemaText = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["implant"],
	"properties": {
		"implant": {
			"type": "object",
			"required": ["tasks"],
			"properties": {
				"tasks": {
					"type": "object",
					"required": ["commands"],
					"properties": {
						"commands": {
							"type": "array",
							"items": {"type": "object"}
						}
					}
				}
			}
		}
	}
}`

var shapeSchema = mustCompileShapeSchema()

func mustCompileShapeSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(shapeSchemaURL, strings.NewReader(shapeSchemaText)); err != nil {
		panic(fmt.Sprintf("shape schema load failed: %v", err))
	}
	compiled, err := c.Compile(shapeSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("shape schema compile failed: %v", err))
	}
	return compiled
}

// ValidateShape checks that doc carries implant.tasks.commands as an array of
// objects. A violation is reported as a *SchemaError located at the deepest
// failing instance.
func ValidateShape(doc *Document) error {
	err := shapeSchema.Validate(plain(doc.Root))
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validate shape: %w", err)
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	return &SchemaError{
		Path:   pointerToPath(verr.InstanceLocation),
		Reason: verr.Message,
	}
}

// pointerToPath turns a JSON pointer such as /implant/tasks/commands/2 into
// implant.tasks.commands[2].
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "$"
	}

	var b strings.Builder
	for _, token := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(token); err == nil && b.Len() > 0 {
			b.WriteString("[" + token + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(token)
	}
	return b.String()
}
