package docs

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
)

// gitHistory answers per-file commit questions for the repository that
// contains the docs directory.
type gitHistory struct {
	repo *git.Repository
	root string
}

// openGitHistory returns nil when dir is not inside a git work tree.
func openGitHistory(dir string) *gitHistory {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Debug("No git repository for docs, skipping page git info", slog.String("dir", dir), logfields.Error(err))
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		slog.Debug("Git repository has no work tree", slog.String("dir", dir), logfields.Error(err))
		return nil
	}
	return &gitHistory{repo: repo, root: wt.Filesystem.Root()}
}

// info returns the creation time, last update time and contributors of
// file. Files without history yield an empty GitInfo.
func (g *gitHistory) info(file string) pagedata.GitInfo {
	abs, err := filepath.Abs(file)
	if err != nil {
		return pagedata.GitInfo{}
	}
	rel, err := filepath.Rel(g.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return pagedata.GitInfo{}
	}
	rel = filepath.ToSlash(rel)

	iter, err := g.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return pagedata.GitInfo{}
	}
	defer iter.Close()

	var info pagedata.GitInfo
	byEmail := make(map[string]*pagedata.Contributor)
	_ = iter.ForEach(func(c *object.Commit) error {
		ms := c.Author.When.UnixMilli()
		if info.UpdatedTime == 0 {
			info.UpdatedTime = ms
		}
		info.CreatedTime = ms

		key := strings.ToLower(c.Author.Email)
		if existing, ok := byEmail[key]; ok {
			existing.Commits++
		} else {
			byEmail[key] = &pagedata.Contributor{Name: c.Author.Name, Email: c.Author.Email, Commits: 1}
		}
		return nil
	})

	for _, c := range byEmail {
		info.Contributors = append(info.Contributors, *c)
	}
	sort.Slice(info.Contributors, func(i, j int) bool {
		a, b := info.Contributors[i], info.Contributors[j]
		if a.Commits != b.Commits {
			return a.Commits > b.Commits
		}
		return a.Name < b.Name
	})
	return info
}
