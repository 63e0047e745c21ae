package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rcrowley/go-metrics"
	"go.uber.org/zap"
)

// Pipeline runs load → validate → randomize → render → write → archive once
// per call to Run.
type Pipeline struct {
	Logger     *zap.Logger
	Randomizer *Randomizer
	Output     OutputStrategy
	// Archive is nil when archiving is disabled.
	Archive  *AssignmentArchive
	Registry metrics.Registry
}

// RunResult describes a successful run.
type RunResult struct {
	RunID       string
	Destination string
	Assignments []Assignment
}

// Run processes the configuration at inputPath. Schema and sampling errors
// abort the run before anything is written.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (res *RunResult, err error) {
	registry := p.Registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	randomized := metrics.GetOrRegisterCounter("commands.randomized", registry)
	failed := metrics.GetOrRegisterCounter("runs.failed", registry)
	duration := metrics.GetOrRegisterTimer("pipeline.duration", registry)

	start := time.Now()
	defer func() {
		duration.UpdateSince(start)
		if err != nil {
			failed.Inc(1)
		}
		p.Logger.Debug("Pipeline finished",
			zap.Int64("commands_randomized", randomized.Count()),
			zap.Int64("runs_failed", failed.Count()),
			zap.Duration("elapsed", time.Since(start)))
	}()

	doc, err := Load(inputPath)
	if err != nil {
		return nil, err
	}
	p.Logger.Debug("Configuration loaded", zap.String("input", inputPath))

	if err := ValidateShape(doc); err != nil {
		return nil, err
	}

	assignments, err := Randomize(doc, p.Randomizer)
	if err != nil {
		return nil, err
	}
	randomized.Inc(int64(len(assignments)))
	for _, a := range assignments {
		p.Logger.Debug("Assigned code",
			zap.Int("index", a.Index),
			zap.String("name", a.Name),
			zap.Int("code", a.Code))
	}

	text, err := Render(doc)
	if err != nil {
		return nil, err
	}
	if err := p.Output.Write(text); err != nil {
		return nil, err
	}

	res = &RunResult{
		RunID:       uuid.NewString(),
		Destination: p.Output.Destination(),
		Assignments: assignments,
	}

	if p.Archive != nil {
		rec := AssignmentRecord{
			RunID:       res.RunID,
			Input:       inputPath,
			Output:      res.Destination,
			CreatedAt:   time.Now().UTC(),
			Assignments: assignments,
		}
		// Archive failures never fail a run whose output is written.
		if err := p.Archive.Record(ctx, rec); err != nil {
			p.Logger.Warn("Failed to archive code assignments", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}
	return res, nil
}
