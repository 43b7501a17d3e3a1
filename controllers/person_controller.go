package controllers

import (
	"net/http"
	"strconv"

	"keycabinet/app"
	"keycabinet/db"

	"github.com/gin-gonic/gin"
)

type PersonController struct{ *Srv }

func NewPersonController(s *Srv) *PersonController { return &PersonController{Srv: s} }

// GET /api/persons?q=&page=&size=
func (pc *PersonController) ListPersons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := pc.Repo.ListPersons(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "persons": res.Persons})
}

type personReq struct {
	Name       string `json:"name" binding:"required"`
	Company    string `json:"company"`
	ExternalID string `json:"externalId" binding:"required"`
	PIN        string `json:"pin"`
}

// RegisterPerson 登记（取钥匙页的快捷添加也走这里）
func (pc *PersonController) RegisterPerson(c *gin.Context) {
	var req personReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	p, err := pc.Repo.RegisterPerson(c.Request.Context(), db.RegisterPersonInput{
		Name:       req.Name,
		Company:    req.Company,
		ExternalID: req.ExternalID,
		RawPIN:     req.PIN,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *PersonController) GetPerson(c *gin.Context) {
	p, err := pc.Repo.FindPersonByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"person": p})
}

// PUT /api/persons/:id（pin 留空 = 不改）
func (pc *PersonController) UpdatePerson(c *gin.Context) {
	var req personReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	p, err := pc.Repo.UpdatePerson(c.Request.Context(), c.Param("id"), db.UpdatePersonInput{
		Name:       req.Name,
		Company:    req.Company,
		ExternalID: req.ExternalID,
		NewPIN:     req.PIN,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeactivatePerson 手里还有钥匙的人不能停用
func (pc *PersonController) DeactivatePerson(c *gin.Context) {
	if err := pc.Repo.DeactivatePerson(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/persons/:id/history 该人的借还历史，最近的在前
func (pc *PersonController) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	// 先确认人存在，404 比空列表直观
	if _, err := pc.Repo.FindPersonByID(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	res, err := pc.Repo.ListLoans(c.Request.Context(), db.LoanQuery{
		PersonID: c.Param("id"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
