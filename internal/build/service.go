package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

// Service is the canonical interface for executing builds.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs required to execute a build.
type Request struct {
	Config  *config.Config
	Options Options
}

// Options modify build behavior.
type Options struct {
	// DryRun validates and assembles the site without writing output,
	// snapshots or events.
	DryRun bool
	// Clean removes the output directory before writing.
	Clean bool
	// Label is stored with the snapshot.
	Label string
}

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusInvalid   Status = "invalid"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Result describes a finished build. Site is nil unless Status is success.
type Result struct {
	Status      Status
	Site        *Site
	Info        manifest.Info
	Violations  []siteconfig.ValidationError
	BrokenLinks []docs.BrokenLink
	SnapshotID  string
	// Changed is false when the inputs match the previous build.
	Changed   bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
