package main

import (
	"fmt"
	"io"
	"os"
)

// OutputStrategy delivers a rendered document to its destination.
type OutputStrategy interface {
	Write(text []byte) error
	// Destination names where the text ends up, for logs and the archive.
	Destination() string
}

// FileOutput writes the rendered text to Path, creating or truncating it.
type FileOutput struct {
	Path string
}

func (o FileOutput) Write(text []byte) error {
	if err := os.WriteFile(o.Path, text, 0o644); err != nil {
		return &IOError{Op: "write", Path: o.Path, Err: err}
	}
	return nil
}

func (o FileOutput) Destination() string { return o.Path }

// StdoutOutput prints the rendered text followed by a newline.
type StdoutOutput struct {
	W io.Writer
}

func (o StdoutOutput) Write(text []byte) error {
	if _, err := fmt.Fprintf(o.W, "%s\n", text); err != nil {
		return &IOError{Op: "write", Path: o.Destination(), Err: err}
	}
	return nil
}

func (o StdoutOutput) Destination() string { return "<stdout>" }
