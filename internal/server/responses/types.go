// Package responses defines API response types used by the docsite HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/docsite/internal/pagedata"
)

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	BuildID   string    `json:"build_id,omitempty"`
	Pages     int       `json:"pages,omitempty"`
}

// ResolveResponse is the answer to a route lookup. Page is the not-found
// page when Found is false.
type ResolveResponse struct {
	Path           string         `json:"path"`
	Title          string         `json:"title"`
	Found          bool           `json:"found"`
	RedirectedFrom string         `json:"redirected_from,omitempty"`
	Page           *pagedata.Page `json:"page"`
}

// RouteResponse is one entry of the route listing.
type RouteResponse struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}
