// controllers/loan_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"keycabinet/app"
	"keycabinet/db"
	"keycabinet/metrics"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

type checkoutReq struct {
	KeyID        string     `json:"keyId" binding:"required"`
	PersonID     string     `json:"personId" binding:"required"`
	PIN          string     `json:"pin" binding:"required"`
	CheckedOutAt *time.Time `json:"checkedOutAt,omitempty"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	Note         string     `json:"note,omitempty"`
}

// Checkout 取钥匙。PIN 不对时什么都不会写。
func (lc *LoanController) Checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	in := db.CheckoutInput{
		KeyID:    req.KeyID,
		PersonID: req.PersonID,
		RawPIN:   req.PIN,
		DueAt:    req.DueAt,
		Note:     req.Note,
	}
	if req.CheckedOutAt != nil {
		in.At = *req.CheckedOutAt
	}

	loan, err := lc.Repo.Checkout(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrInvalidPIN):
			metrics.RecordCheckout("denied")
		case errors.Is(err, db.ErrKeyUnavailable):
			metrics.RecordCheckout("conflict")
		default:
			metrics.RecordCheckout("error")
		}
		fail(c, err)
		return
	}
	metrics.RecordCheckout("ok")
	c.JSON(http.StatusCreated, loan)
}

type returnReq struct {
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

// Return 归还。重复提交返回 alreadyReturned=true，记录不动。
func (lc *LoanController) Return(c *gin.Context) {
	loanID := c.Param("loanId")
	if loanID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing loan id"})
		return
	}
	var req returnReq
	_ = c.ShouldBindJSON(&req)

	var at time.Time
	if req.ReturnedAt != nil {
		at = *req.ReturnedAt
	}
	loan, already, err := lc.Repo.ReturnLoan(c.Request.Context(), loanID, at)
	if err != nil {
		metrics.RecordReturn("error")
		fail(c, err)
		return
	}
	if already {
		metrics.RecordReturn("duplicate")
	} else {
		metrics.RecordReturn("ok")
	}
	c.JSON(http.StatusOK, app.H{"loan": loan, "alreadyReturned": already})
}

// ListLoans 借还记录：?personId=&keyId=&status=pending|returned&start=&end=&page=&size=
func (lc *LoanController) ListLoans(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	q := db.LoanQuery{
		PersonID: c.Query("personId"),
		KeyID:    c.Query("keyId"),
		Status:   c.Query("status"),
		Start:    c.Query("start"),
		End:      c.Query("end"),
		Page:     page,
		Size:     size,
	}
	res, err := lc.Repo.ListLoans(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListOpenLoans 归还页：当前在外面的钥匙，可按钥匙/人过滤
func (lc *LoanController) ListOpenLoans(c *gin.Context) {
	rows, err := lc.Repo.ListOpenLoans(c.Request.Context(), c.Query("keyId"), c.Query("personId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": rows})
}
