package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"keycabinet/app"
	"keycabinet/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OperatorController struct{ *Srv }

func NewOperatorController(s *Srv) *OperatorController { return &OperatorController{Srv: s} }

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 密码校验通过后发 Redis 会话 Cookie
func (oc *OperatorController) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	o, err := oc.Repo.FindOperatorByUsername(c.Request.Context(), req.Username)
	if err != nil || !o.Active || !o.CheckPassword(req.Password) {
		// 账号不存在和密码错给同一个回答
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}

	_ = oc.Repo.TouchOperatorLogin(c.Request.Context(), o.ID, c.ClientIP(), c.Request.UserAgent())

	id := uuid.NewString()
	if err := oc.AppSess.Create(c.Request.Context(), id, o.ID); err != nil {
		fail(c, err)
		return
	}
	oc.setAppCookie(c.Writer, id, oc.Cfg.SessionTTL)
	c.JSON(http.StatusOK, app.H{"operator": o})
}

// Logout 删 Redis，会话 Cookie 置空
func (oc *OperatorController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = oc.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // 删除
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(oc.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (oc *OperatorController) WhoAmI(c *gin.Context) {
	v, _ := c.Get("operatorID")
	oid, _ := v.(string)
	o, err := oc.Repo.FindOperatorByID(c.Request.Context(), oid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"operator": o})
}

// --- 账号管理（仅管理员） ---

// GET /api/operators?q=&page=&size=
func (oc *OperatorController) ListOperators(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := oc.Repo.ListOperators(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "operators": res.Operators})
}

type createOperatorReq struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password" binding:"required,min=8"`
	IsAdmin     bool   `json:"isAdmin"`
}

func (oc *OperatorController) CreateOperator(c *gin.Context) {
	var req createOperatorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	o, err := oc.Repo.CreateOperator(c.Request.Context(), db.CreateOperatorInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

type updateOperatorReq struct {
	DisplayName string `json:"displayName" binding:"required"`
	IsAdmin     bool   `json:"isAdmin"`
	Password    string `json:"password"` // 空 = 不改
}

func (oc *OperatorController) UpdateOperator(c *gin.Context) {
	var req updateOperatorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	o, err := oc.Repo.UpdateOperator(c.Request.Context(), c.Param("id"), db.UpdateOperatorInput{
		DisplayName: req.DisplayName,
		IsAdmin:     req.IsAdmin,
		NewPassword: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// DELETE /api/operators/:id（软删除 + 撤销所有会话）
func (oc *OperatorController) DeactivateOperator(c *gin.Context) {
	id := c.Param("id")

	// 不允许停用自己，避免锁死
	if v, ok := c.Get("operatorID"); ok {
		if oid, _ := v.(string); oid == id {
			c.JSON(http.StatusBadRequest, app.H{"error": "cannot deactivate yourself"})
			return
		}
	}

	if err := oc.Repo.DeactivateOperator(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	// ✅ 关键：撤销该账号的所有登录会话
	_ = oc.AppSess.RevokeAllForOperator(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
