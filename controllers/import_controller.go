package controllers

import (
	"net/http"

	"keycabinet/app"
	"keycabinet/importer"

	"github.com/gin-gonic/gin"
)

type ImportController struct{ *Srv }

func NewImportController(s *Srv) *ImportController { return &ImportController{Srv: s} }

// 表格解析在前端/脚本侧完成，这里收拆好的行数组

// POST /api/import/persons
func (ic *ImportController) ImportPersons(c *gin.Context) {
	var rows []importer.PersonRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	res, err := importer.ImportPersons(c.Request.Context(), ic.Repo, rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/import/keys
func (ic *ImportController) ImportKeys(c *gin.Context) {
	var rows []importer.KeyRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	res, err := importer.ImportKeys(c.Request.Context(), ic.Repo, rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
