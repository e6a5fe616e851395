package v1

import (
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/jgomezprojects/Finanzas/internal/types"
)

type StatsResponse struct {
	Data  []models.EnvelopeStats `json:"data"`                                    // Income and expense per envelope over the window
	Error *string                `json:"error" example:"the window query parameter must be set"` // The error, if any occurred
}

type StatsResetResponse struct {
	Data  *models.ResetWindowResult `json:"data"`                                    // What the reset did
	Error *string                   `json:"error" example:"the window query parameter must be set"` // The error, if any occurred
}

// StatsQuery are the query parameters for the statistics endpoints.
type StatsQuery struct {
	Window types.Window `form:"window"` // The time window, one of 24h, 7d, 30d
}
