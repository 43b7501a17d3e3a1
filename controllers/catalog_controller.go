package controllers

import (
	"net/http"
	"strconv"

	"keycabinet/app"
	"keycabinet/db"

	"github.com/gin-gonic/gin"
)

type CatalogController struct{ *Srv }

func NewCatalogController(s *Srv) *CatalogController { return &CatalogController{Srv: s} }

// --- Locations ---

func (cc *CatalogController) ListLocations(c *gin.Context) {
	locs, err := cc.Repo.ListLocations(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"locations": locs})
}

type locationReq struct {
	Name string `json:"name" binding:"required"`
}

func (cc *CatalogController) CreateLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	loc, err := cc.Repo.CreateLocation(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (cc *CatalogController) UpdateLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	loc, err := cc.Repo.UpdateLocation(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// DeactivateLocation 地点下还有活跃钥匙时拒绝
func (cc *CatalogController) DeactivateLocation(c *gin.Context) {
	if err := cc.Repo.DeactivateLocation(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// --- Keys ---

// ListKeys 取钥匙页下拉：?locationId=&available=true
func (cc *CatalogController) ListKeys(c *gin.Context) {
	q := db.KeyQuery{
		LocationID:    c.Query("locationId"),
		AvailableOnly: c.Query("available") == "true",
	}
	ks, err := cc.Repo.ListKeys(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"keys": ks})
}

// ListKeysAdmin 管理页：钥匙 + 当前借用人 + 是否逾期
func (cc *CatalogController) ListKeysAdmin(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := cc.Repo.ListKeysWithCurrentLoan(c.Request.Context(), db.KeyRowsQuery{
		Q:      c.Query("q"),
		Status: c.Query("status"), // "", "open", "available", "overdue", "inactive"
		Page:   page,
		Size:   size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type keyReq struct {
	Description string `json:"description" binding:"required"`
	LocationID  string `json:"locationId" binding:"required"`
}

func (cc *CatalogController) CreateKey(c *gin.Context) {
	var req keyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	k, err := cc.Repo.CreateKey(c.Request.Context(), req.Description, req.LocationID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, k)
}

func (cc *CatalogController) UpdateKey(c *gin.Context) {
	var req keyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	k, err := cc.Repo.UpdateKey(c.Request.Context(), c.Param("id"), req.Description, req.LocationID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

// DeactivateKey 在外面的钥匙不能停用
func (cc *CatalogController) DeactivateKey(c *gin.Context) {
	if err := cc.Repo.DeactivateKey(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/keys/:id/history 这把钥匙的借还历史
func (cc *CatalogController) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	if _, err := cc.Repo.FindKeyByID(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	res, err := cc.Repo.ListLoans(c.Request.Context(), db.LoanQuery{
		KeyID: c.Param("id"),
		Page:  page,
		Size:  size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
