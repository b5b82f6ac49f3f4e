package commands

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

// openSite loads the site from the build output, or builds it in memory
// when there is no output yet.
func openSite(ctx context.Context, cfg *config.Config) (*build.Site, error) {
	site, _ := siteconfig.Load(cfg.Source.SiteConfig)
	loaded, err := build.LoadSite(cfg.Output.Directory, build.SearchLimit(cfg, site), nil)
	if err == nil {
		return loaded, nil
	}
	if !stderrors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	slog.Debug("No build output, building in memory", slog.String("dir", cfg.Output.Directory))
	res, err := build.NewService().Run(ctx, build.Request{Config: cfg, Options: build.Options{DryRun: true}})
	if err != nil {
		return nil, err
	}
	return res.Site, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
