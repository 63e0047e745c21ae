package main

import (
	"encoding/json"
	"math/rand"
)

// ConfigGenerator builds implant configurations for tests.
type ConfigGenerator struct {
	rnd       *rand.Rand
	commands  []string
	platforms []string
	notes     []string
}

func NewConfigGenerator(seed int64) *ConfigGenerator {
	return &ConfigGenerator{
		rnd:       rand.New(rand.NewSource(seed)),
		commands:  []string{"whoami", "pwd", "ls", "cd", "ps", "sleep", "upload", "download", "exit", "hostname"},
		platforms: []string{"windows", "linux", "darwin"},
		notes: []string{
			"Prints the current user.",
			"Prints the working directory.",
			"Contains \"quotes\": {braces} and [brackets].",
			"Unicode stays intact: äöü ✓",
		},
	}
}

// Generate returns a configuration with n command records plus unrelated
// top-level content.
func (g *ConfigGenerator) Generate(n int) []byte {
	commands := make([]map[string]any, n)
	for i := range commands {
		commands[i] = map[string]any{
			"name":        g.commands[g.rnd.Intn(len(g.commands))],
			"code":        g.rnd.Intn(100),
			"description": g.notes[g.rnd.Intn(len(g.notes))],
			"args":        g.randomSample(g.platforms, g.rnd.Intn(len(g.platforms)+1)),
		}
	}

	conf := map[string]any{
		"listener": map[string]any{"address": "0.0.0.0", "port": 8080},
		"implant": map[string]any{
			"sleep": 1.5,
			"tasks": map[string]any{
				"commands": commands,
			},
		},
	}

	data, err := json.Marshal(conf)
	if err != nil {
		panic(err)
	}
	return data
}

func (g *ConfigGenerator) randomSample(list []string, n int) []string {
	out := append([]string(nil), list...)
	g.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:n]
}
