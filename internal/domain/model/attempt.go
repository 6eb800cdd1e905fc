// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
)

// Attempt represents one completed drawing stroke submitted by a client.
// Points are raw device-pixel samples in draw order.
type Attempt struct {
	AttemptID string       // unique id for idempotency
	PlayerID  string       // subject/player identifier
	Points    []geom.Point // raw pointer path, device pixels
	TS        time.Time    // submission timestamp
}

// PlayerScore captures a player's best squareness result used for ranking.
type PlayerScore struct {
	PlayerID string
	Score    int
	Metrics  analyzer.Metrics
}
