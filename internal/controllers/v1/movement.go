package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/jgomezprojects/Finanzas/internal/httputil"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/ryanuber/go-glob"
	"golang.org/x/exp/slices"
)

// historyDeleteConfirmation is the value the confirm parameter must have to
// delete the whole movement history.
const historyDeleteConfirmation = "yes-please-delete-my-history"

// RegisterMovementRoutes registers the routes for movements with
// the RouterGroup that is passed.
func RegisterMovementRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsMovementList)
		r.GET("", GetMovements)
		r.POST("", CreateMovements)
		r.DELETE("", DeleteMovements)
	}

	// Movement with ID
	{
		r.OPTIONS("/:id", OptionsMovementDetail)
		r.GET("/:id", GetMovement)
		r.DELETE("/:id", RevertMovement)
	}
}

func OptionsMovementList(c *gin.Context) {
	httputil.OptionsGetPostDelete(c)
}

func OptionsMovementDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Movement{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetDelete(c)
}

// CreateMovements records new movements. Each movement is one operation
// against the ledger, so a rejected entry leaves balances untouched while
// the remaining entries are still processed.
func CreateMovements(c *gin.Context) {
	var editables []MovementEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MovementCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := MovementCreateResponse{}

	for _, editable := range editables {
		movement, err := record(editable)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newMovement(c, movement)
		r.Data = append(r.Data, MovementResponse{Data: &data})
	}

	c.JSON(status, r)
}

// record dispatches a movement request to the operation for its kind.
func record(editable MovementEditable) (models.Movement, error) {
	switch editable.Kind {
	case models.MovementIncome:
		return models.RecordIncome(models.DB, models.Income{
			SourceName:  editable.SourceName,
			EnvelopeID:  editable.EnvelopeID,
			Amount:      editable.Amount,
			Description: editable.Description,
			Date:        editable.Date,
		})

	case models.MovementExpense:
		if editable.EnvelopeID == nil {
			return models.Movement{}, errEnvelopeIDParameter
		}

		return models.RecordExpense(models.DB, models.Expense{
			SourceName:  editable.SourceName,
			EnvelopeID:  *editable.EnvelopeID,
			Amount:      editable.Amount,
			Description: editable.Description,
			Date:        editable.Date,
		})

	case models.MovementTransfer:
		return models.RecordTransfer(models.DB, models.Transfer{
			FromSource:  editable.FromSource,
			ToSource:    editable.ToSource,
			Amount:      editable.Amount,
			Description: editable.Description,
			Date:        editable.Date,
		})

	default:
		return models.Movement{}, errMovementKindNotCreatable
	}
}

// GetMovements returns the movement log, newest first.
func GetMovements(c *gin.Context) {
	var filter MovementQueryFilter
	err := c.ShouldBind(&filter)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, MovementListResponse{
			Error: &s,
		})
		return
	}

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	// Convert the QueryFilter to a Create struct
	filterModel, err := filter.model()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MovementListResponse{
			Error: &s,
		})
		return
	}

	q := models.DB.
		Order("date DESC, created_at DESC").
		Where(&filterModel, queryFields...)

	if slices.Contains(setFields, "Window") {
		q = q.Where("date >= ?", filter.Window.Start(time.Now()))
	}

	var movements []models.Movement
	err = q.Find(&movements).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MovementListResponse{
			Error: &s,
		})
		return
	}

	// The description filter supports * as wildcard, which sqlite cannot
	// evaluate, so it is applied here
	if slices.Contains(setFields, "Description") {
		pattern := strings.ToLower(filter.Description)

		matched := make([]models.Movement, 0, len(movements))
		for _, movement := range movements {
			if glob.Glob(pattern, strings.ToLower(movement.Description)) {
				matched = append(matched, movement)
			}
		}
		movements = matched
	}

	// Pagination happens after the description filter so that the total
	// reflects what the filters actually match
	total := int64(len(movements))

	offset := int(filter.Offset)
	if offset > len(movements) {
		offset = len(movements)
	}
	movements = movements[offset:]

	// Default to 50 Movements and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	if limit >= 0 && limit < len(movements) {
		movements = movements[:limit]
	}

	data := make([]Movement, 0)
	for _, movement := range movements {
		data = append(data, newMovement(c, movement))
	}

	c.JSON(http.StatusOK, MovementListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  total,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// GetMovement returns a specific movement
func GetMovement(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MovementResponse{
			Error: &s,
		})
		return
	}

	var movement models.Movement
	err = models.DB.First(&movement, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MovementResponse{
			Error: &s,
		})
		return
	}

	data := newMovement(c, movement)
	c.JSON(http.StatusOK, MovementResponse{Data: &data})
}

// RevertMovement applies the inverse effect of a movement and removes it
// from the log. When a referenced source or envelope no longer exists or a
// balance would go negative, nothing changes.
func RevertMovement(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.Revert(models.DB, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// DeleteMovements deletes the whole movement history. Balances are left
// untouched, this only wipes the log.
func DeleteMovements(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != historyDeleteConfirmation {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errHistoryConfirmation.Error(),
		})
		return
	}

	err = models.DB.Unscoped().Where("true").Delete(&models.Movement{}).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
