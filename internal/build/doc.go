// Package build runs the docsite build pipeline.
//
// A build loads the site configuration, scans the docs tree into pages,
// assembles the route table, validates the navigation against it, derives
// the search index and theme data, writes the output, and optionally
// records a snapshot and announces the rebuild. Every execution path (CLI,
// serve mode, tests) goes through Service.
//
// Site is the queryable result of a build. Holder publishes the current
// Site to concurrent readers and swaps it wholesale on rebuild.
package build
