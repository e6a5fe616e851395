package v1

import (
	"net/http"

	"github.com/jgomezprojects/Finanzas/internal/httputil"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
)

// RegisterSourceRoutes registers the routes for sources with
// the RouterGroup that is passed.
//
// Sources are read only over the API, their balances change exclusively
// through movements.
func RegisterSourceRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsSourceList)
		r.GET("", GetSources)
	}

	{
		r.OPTIONS("/:name", OptionsSourceDetail)
		r.GET("/:name", GetSource)
	}
}

func OptionsSourceList(c *gin.Context) {
	httputil.OptionsGet(c)
}

func OptionsSourceDetail(c *gin.Context) {
	var source models.Source
	err := models.DB.Where(&models.Source{Name: c.Param("name")}).First(&source).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGet(c)
}

// GetSources returns all sources in alphabetical order.
func GetSources(c *gin.Context) {
	var sources []models.Source
	err := models.DB.Order("name ASC").Find(&sources).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SourceListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Source, 0)
	for _, source := range sources {
		data = append(data, newSource(c, source))
	}

	c.JSON(http.StatusOK, SourceListResponse{Data: data})
}

// GetSource returns a specific source by its name. Movements reference
// sources by name, so the API addresses them the same way.
func GetSource(c *gin.Context) {
	var source models.Source
	err := models.DB.Where(&models.Source{Name: c.Param("name")}).First(&source).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SourceResponse{
			Error: &s,
		})
		return
	}

	data := newSource(c, source)
	c.JSON(http.StatusOK, SourceResponse{Data: &data})
}
