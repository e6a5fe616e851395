package v1

import (
	"net/http"

	"github.com/jgomezprojects/Finanzas/internal/httputil"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterLoanRoutes registers the routes for loans with
// the RouterGroup that is passed.
func RegisterLoanRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsLoanList)
		r.GET("", GetLoans)
		r.POST("", CreateLoans)
	}

	// Loan with ID
	{
		r.OPTIONS("/:id", OptionsLoanDetail)
		r.GET("/:id", GetLoan)
		r.DELETE("/:id", DeleteLoan)
		r.POST("/:id/repayments", RepayLoan)
	}
}

func OptionsLoanList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsLoanDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Loan{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetDelete(c)
}

// CreateLoans hands out new loans. The amount leaves the envelope and the
// source like an expense does and the movement is tagged with the loan.
func CreateLoans(c *gin.Context) {
	var editables []LoanEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LoanCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := LoanCreateResponse{}

	for _, editable := range editables {
		loan, err := models.CreateLoan(models.DB, editable.model())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newLoan(c, loan)
		r.Data = append(r.Data, LoanResponse{Data: &data})
	}

	c.JSON(status, r)
}

// GetLoans returns a list of loans. Settled loans are hidden unless the
// settled query parameter is set to true.
func GetLoans(c *gin.Context) {
	var filter LoanQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel := filter.model()
	q := models.DB.
		Order("created_at ASC").
		Where(&filterModel, queryFields...)

	if !slices.Contains(setFields, "Settled") || !filter.Settled {
		q = q.Where("remaining > 0")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 Loans and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var loans []models.Loan
	err := q.Find(&loans).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Loan, 0)
	for _, loan := range loans {
		data = append(data, newLoan(c, loan))
	}

	c.JSON(http.StatusOK, LoanListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// GetLoan returns a specific loan
func GetLoan(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	var loan models.Loan
	err = models.DB.First(&loan, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	data := newLoan(c, loan)
	c.JSON(http.StatusOK, LoanResponse{Data: &data})
}

// RepayLoan records a partial or total repayment. The money returns to the
// given source and to the envelope the loan was taken from.
func RepayLoan(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	var repayment LoanRepayment
	err = httputil.BindData(c, &repayment)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	loan, err := models.RepayLoan(models.DB, uri.ID.UUID, repayment.Amount, repayment.SourceName, repayment.Date)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	data := newLoan(c, loan)
	c.JSON(http.StatusCreated, LoanResponse{Data: &data})
}

// DeleteLoan deletes a loan record. Balances and the movement history are
// left untouched.
func DeleteLoan(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DeleteLoan(models.DB, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
