package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"git.home.luguber.info/inful/docsite/internal/pagedata"
)

// ComputeSetHash hashes the route paths and content fingerprints of pages.
// It changes exactly when a page is added, removed, moved or edited, so
// rebuilds can tell whether the docs set moved at all.
func ComputeSetHash(pages []pagedata.Page) string {
	entries := make([]string, 0, len(pages))
	for _, p := range pages {
		entries = append(entries, p.Path+"|"+p.FilePathRelative+"|"+p.Fingerprint)
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
