package v1

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/jgomezprojects/Finanzas/internal/httputil"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
)

var backendVersion string

// RegisterExportRoutes registers the routes for exports with
// the RouterGroup that is passed.
func RegisterExportRoutes(r *gin.RouterGroup, version string) {
	backendVersion = version

	{
		r.OPTIONS("", OptionsExport)
		r.GET("", GetExport)
	}
}

// RegisterImportRoutes registers the routes for imports with
// the RouterGroup that is passed.
func RegisterImportRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsImport)
		r.POST("", CreateImport)
	}
}

func OptionsExport(c *gin.Context) {
	httputil.OptionsGet(c)
}

func OptionsImport(c *gin.Context) {
	httputil.OptionsPost(c)
}

// GetExport exports all resources of the instance in one blob. The blob can
// be loaded back losslessly with the import endpoint.
func GetExport(c *gin.Context) {
	resources := make(map[string]json.RawMessage)

	for _, model := range models.Registry {
		b, err := model.Export()
		if err != nil {
			c.JSON(status(err), httpError{
				Error: err.Error(),
			})
			return
		}

		resources[reflect.TypeOf(model).Name()] = b
	}

	c.JSON(http.StatusOK, ExportResponse{
		Version:      backendVersion,
		Data:         resources,
		CreationTime: time.Now(),
		Clacks:       "GNU Terry Pratchett",
	})
}

// CreateImport replaces the whole instance state with an export blob. The
// body accepts either a full export response or just its data map.
func CreateImport(c *gin.Context) {
	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}

	err := httputil.BindData(c, &body)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.Import(models.DB, body.Data)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
