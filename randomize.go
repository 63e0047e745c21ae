package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Codes are drawn from [MinCode, MaxCode).
const (
	MinCode     = 1
	MaxCode     = 65535
	MaxCommands = MaxCode - MinCode
)

// commandsPath is the location of the command list inside the document.
var commandsPath = []string{"implant", "tasks", "commands"}

// Assignment records the code given to one command record.
type Assignment struct {
	Index int    `bson:"index"`
	Name  string `bson:"name,omitempty"`
	Code  int    `bson:"code"`
}

// Randomize gives every record of implant.tasks.commands a fresh code. The
// i-th draw goes to the i-th record. If a record is not an object,
// Randomize stops there and returns the assignments made so far along with a
// *SchemaError. Earlier records keep their new codes.
func Randomize(doc *Document, rnd *Randomizer) ([]Assignment, error) {
	commands, err := commandsOf(doc)
	if err != nil {
		return nil, err
	}

	codes, err := rnd.Sample(len(commands), MinCode, MaxCode)
	if err != nil {
		return nil, err
	}

	assignments := make([]Assignment, 0, len(commands))
	for i, elem := range commands {
		record, ok := elem.(*Object)
		if !ok {
			return assignments, &SchemaError{
				Path:   fmt.Sprintf("%s[%d]", dotted(commandsPath), i),
				Reason: fmt.Sprintf("expected object, got %s", jsonType(elem)),
			}
		}
		record.Set("code", json.Number(strconv.Itoa(codes[i])))
		assignments = append(assignments, Assignment{
			Index: i,
			Name:  commandName(record),
			Code:  codes[i],
		})
	}
	return assignments, nil
}

// commandsOf resolves implant.tasks.commands.
func commandsOf(doc *Document) ([]any, error) {
	cur := doc.Root
	for depth, key := range commandsPath {
		obj, ok := cur.(*Object)
		if !ok {
			return nil, &SchemaError{
				Path:   pathOrRoot(commandsPath[:depth]),
				Reason: fmt.Sprintf("expected object, got %s", jsonType(cur)),
			}
		}
		next, ok := obj.Get(key)
		if !ok {
			return nil, &SchemaError{
				Path:   pathOrRoot(commandsPath[:depth]),
				Reason: fmt.Sprintf("missing key %q", key),
			}
		}
		cur = next
	}

	commands, ok := cur.([]any)
	if !ok {
		return nil, &SchemaError{
			Path:   dotted(commandsPath),
			Reason: fmt.Sprintf("expected array, got %s", jsonType(cur)),
		}
	}
	return commands, nil
}

func commandName(record *Object) string {
	if v, ok := record.Get("name"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func dotted(keys []string) string {
	return strings.Join(keys, ".")
}

func pathOrRoot(keys []string) string {
	if len(keys) == 0 {
		return "$"
	}
	return dotted(keys)
}
