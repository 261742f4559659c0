package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// GenerateOptions configures one walk-and-write pass over a materialized tree.
type GenerateOptions struct {
	Root             string
	OutputPath       string
	Header           ReportHeader
	Table            ExtensionTable
	RespectGitIgnore bool
	MaxSize          int64
	OnSection        func(OutputSection) // Called after each section is written
	Log              Logger
}

// Generate walks opts.Root and writes the report to opts.OutputPath.
// The document goes to a temporary file next to the destination and is
// renamed into place only after everything was written and flushed.
func Generate(opts GenerateOptions) (Summary, error) {
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}
	summary := Summary{Output: opts.OutputPath}

	walker := NewWalker(opts.Table.IgnoreDirs, log)
	if opts.RespectGitIgnore {
		walker.UseGitIgnore(opts.Root)
	}
	aggregator := NewAggregator(NewClassifier(opts.Table), opts.Root, opts.MaxSize)

	tmp, err := os.CreateTemp(filepath.Dir(opts.OutputPath), "."+filepath.Base(opts.OutputPath)+".*.tmp")
	if err != nil {
		return summary, &DestinationError{Path: opts.OutputPath, Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	// The destination may live inside the walked tree, e.g. the default
	// output of a run over ".".
	walker.Exclude(opts.OutputPath, tmp.Name())

	rw, err := NewReportWriter(tmp, opts.Header)
	if err != nil {
		return summary, &DestinationError{Path: opts.OutputPath, Err: err}
	}

	err = walker.Walk(opts.Root, func(group DirectoryGroup) error {
		summary.Directories++
		sections, counts := aggregator.Aggregate(group)
		for _, section := range sections {
			if err := rw.WriteSection(section); err != nil {
				return &DestinationError{Path: opts.OutputPath, Err: err}
			}
			if opts.OnSection != nil {
				opts.OnSection(section)
			}
		}
		summary.Counters = summary.Counters.Add(counts)
		if len(sections) > 0 {
			log.Info("Processed: %s", group.Label())
		}
		return nil
	})
	if err != nil {
		var destErr *DestinationError
		if errors.As(err, &destErr) {
			return summary, err
		}
		return summary, fmt.Errorf("error walking directory %s: %w", opts.Root, err)
	}

	if err := rw.Flush(); err != nil {
		return summary, &DestinationError{Path: opts.OutputPath, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return summary, &DestinationError{Path: opts.OutputPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return summary, &DestinationError{Path: opts.OutputPath, Err: err}
	}
	if err := os.Rename(tmp.Name(), opts.OutputPath); err != nil {
		_ = os.Remove(tmp.Name())
		committed = true
		return summary, &DestinationError{Path: opts.OutputPath, Err: err}
	}
	committed = true

	summary.Digest = rw.Digest()
	return summary, nil
}

type runState int

const (
	stateIdle runState = iota
	stateAcquiring
	stateWalking
	stateDone
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAcquiring:
		return "acquiring"
	case stateWalking:
		return "walking"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

// Acquirer materializes a source location as a local directory.
type Acquirer interface {
	Acquire(ctx context.Context, source, branch string) (string, error)
}

// RunConfig is the resolved configuration for a whole run.
type RunConfig struct {
	Source           string
	Branch           string
	Output           string // Empty means "<repo>_<branch>_summary.md" in the working directory
	Table            ExtensionTable
	RespectGitIgnore bool
	MaxSize          int64
}

// runner drives Idle -> Acquiring -> Walking -> Done, or Failed from any state.
type runner struct {
	acquirer  Acquirer
	log       Logger
	onSection func(OutputSection)
	state     runState
}

func (r *runner) transition(next runState) {
	r.state = next
}

// Run acquires the source and generates the report.
func (r *runner) Run(ctx context.Context, cfg RunConfig) (Summary, error) {
	r.transition(stateIdle)
	repoName := repoNameFromURL(cfg.Source)
	output := cfg.Output
	if output == "" {
		output = outputFileName(repoName, cfg.Branch)
	}

	r.transition(stateAcquiring)
	root, err := r.acquirer.Acquire(ctx, cfg.Source, cfg.Branch)
	if err != nil {
		r.transition(stateFailed)
		return Summary{}, err
	}

	r.log.Info("Output file: %s", output)
	r.transition(stateWalking)
	summary, err := Generate(GenerateOptions{
		Root:       root,
		OutputPath: output,
		Header: ReportHeader{
			RepoName:    repoName,
			SourceURL:   cfg.Source,
			Branch:      cfg.Branch,
			Destination: filepath.Base(output),
		},
		Table:            cfg.Table,
		RespectGitIgnore: cfg.RespectGitIgnore,
		MaxSize:          cfg.MaxSize,
		OnSection:        r.onSection,
		Log:              r.log,
	})
	if err != nil {
		r.transition(stateFailed)
		return summary, err
	}

	r.transition(stateDone)
	return summary, nil
}
