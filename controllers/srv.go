// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"keycabinet/app"
	"keycabinet/db"
	"keycabinet/session"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Repo      *db.Repo
	AppSess   *session.AppSessionStore
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      a.Repo(),
		AppSess:   a.AppSessions(),
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// fail 统一把业务错误映射为 HTTP 状态码；认不出的按存储故障算 500
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrPersonNotFound),
		errors.Is(err, db.ErrKeyNotFound),
		errors.Is(err, db.ErrLoanNotFound),
		errors.Is(err, db.ErrLocationNotFound),
		errors.Is(err, db.ErrOperatorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrDuplicateExternalID),
		errors.Is(err, db.ErrDuplicateName),
		errors.Is(err, db.ErrKeyUnavailable),
		errors.Is(err, db.ErrKeyInactive),
		errors.Is(err, db.ErrHasOpenLoans),
		errors.Is(err, db.ErrHasActiveKeys),
		errors.Is(err, db.ErrKeyOnLoan):
		status = http.StatusConflict
	case errors.Is(err, db.ErrInvalidPIN):
		status = http.StatusUnauthorized
	case errors.Is(err, db.ErrPINFormat):
		status = http.StatusBadRequest
	}
	c.JSON(status, app.H{"error": err.Error()})
}

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}
