package v1

import (
	"net/http"

	"github.com/jgomezprojects/Finanzas/internal/httputil"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterFixedExpenseRoutes registers the routes for fixed expense
// templates with the RouterGroup that is passed.
func RegisterFixedExpenseRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsFixedExpenseList)
		r.GET("", GetFixedExpenses)
		r.POST("", CreateFixedExpenses)
	}

	// Template with ID
	{
		r.OPTIONS("/:id", OptionsFixedExpenseDetail)
		r.GET("/:id", GetFixedExpense)
		r.PATCH("/:id", UpdateFixedExpense)
		r.DELETE("/:id", DeleteFixedExpense)
		r.POST("/:id/execute", ExecuteFixedExpense)
	}
}

func OptionsFixedExpenseList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsFixedExpenseDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.FixedExpense{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// CreateFixedExpenses creates new fixed expense templates. A template can be
// created with just a name and configured later.
func CreateFixedExpenses(c *gin.Context) {
	var editables []FixedExpenseEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FixedExpenseCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := FixedExpenseCreateResponse{}

	for _, editable := range editables {
		fixedExpense := editable.model()

		err = models.DB.Create(&fixedExpense).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newFixedExpense(c, fixedExpense)
		r.Data = append(r.Data, FixedExpenseResponse{Data: &data})
	}

	c.JSON(status, r)
}

// GetFixedExpenses returns a list of fixed expense templates
func GetFixedExpenses(c *gin.Context) {
	var filter FixedExpenseQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel := filter.model()
	q := models.DB.
		Order("name ASC").
		Where(&filterModel, queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 templates and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var fixedExpenses []models.FixedExpense
	err := q.Find(&fixedExpenses).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseListResponse{
			Error: &s,
		})
		return
	}

	data := make([]FixedExpense, 0)
	for _, fixedExpense := range fixedExpenses {
		data = append(data, newFixedExpense(c, fixedExpense))
	}

	c.JSON(http.StatusOK, FixedExpenseListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// GetFixedExpense returns a specific fixed expense template
func GetFixedExpense(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseResponse{
			Error: &s,
		})
		return
	}

	var fixedExpense models.FixedExpense
	err = models.DB.First(&fixedExpense, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseResponse{
			Error: &s,
		})
		return
	}

	data := newFixedExpense(c, fixedExpense)
	c.JSON(http.StatusOK, FixedExpenseResponse{Data: &data})
}

// UpdateFixedExpense updates a template, this is how it gets configured for
// execution. Only values to be updated need to be specified.
func UpdateFixedExpense(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseResponse{
			Error: &s,
		})
		return
	}

	var fixedExpense models.FixedExpense
	err = models.DB.First(&fixedExpense, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, FixedExpenseEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseResponse{
			Error: &s,
		})
		return
	}

	var data FixedExpenseEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&fixedExpense).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FixedExpenseResponse{
			Error: &s,
		})
		return
	}

	r := newFixedExpense(c, fixedExpense)
	c.JSON(http.StatusOK, FixedExpenseResponse{Data: &r})
}

// ExecuteFixedExpense pays a configured template from the given source. The
// template itself is never changed by an execution.
func ExecuteFixedExpense(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MovementResponse{
			Error: &s,
		})
		return
	}

	var execution FixedExpenseExecution
	err = httputil.BindData(c, &execution)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MovementResponse{
			Error: &s,
		})
		return
	}

	movement, err := models.ExecuteFixedExpense(models.DB, uri.ID.UUID, execution.SourceName, execution.Date)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MovementResponse{
			Error: &s,
		})
		return
	}

	data := newMovement(c, movement)
	c.JSON(http.StatusCreated, MovementResponse{Data: &data})
}

// DeleteFixedExpense deletes a fixed expense template
func DeleteFixedExpense(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var fixedExpense models.FixedExpense
	err = models.DB.First(&fixedExpense, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Unscoped().Delete(&fixedExpense).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
