package handlers

import (
	"github.com/replaydeck/replaydeck/internal/intelligence"
	"github.com/replaydeck/replaydeck/internal/project"
	"github.com/replaydeck/replaydeck/internal/replay"
)

// Base holds the services shared by all handlers.
type Base struct {
	Replay       *replay.Service
	Projects     *project.Service
	Intelligence *intelligence.Service
}

// NewBase creates a new Base. Intelligence may be nil when analysis is
// disabled; handlers that depend on it degrade gracefully.
func NewBase(replaySvc *replay.Service, projectSvc *project.Service, intelligenceSvc *intelligence.Service) *Base {
	return &Base{
		Replay:       replaySvc,
		Projects:     projectSvc,
		Intelligence: intelligenceSvc,
	}
}
