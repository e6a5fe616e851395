package v1

import (
	"errors"
	"net/http"

	"github.com/jgomezprojects/Finanzas/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

// Reset errors
var (
	errResetConfirmation       = errors.New("the confirmation for the reset API call was incorrect")
	errHistoryConfirmation     = errors.New("the confirmation for deleting all movements was incorrect")
	errWindowResetConfirmation = errors.New("the confirmation for the statistics reset API call was incorrect")
)

// Movement errors
var (
	errMovementKindNotCreatable = errors.New("only INCOME, EXPENSE and TRANSFER movements can be created")
	errEnvelopeIDParameter      = errors.New("the envelopeId parameter must be set for EXPENSE movements")
)

// Statistics errors
var (
	errWindowNotSetInQuery = errors.New("the window query parameter must be set")
)
