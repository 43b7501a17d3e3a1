package controllers

import (
	"net/http"
	"time"

	"keycabinet/app"
	"keycabinet/db"
	"keycabinet/report"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// Analytics 仪表盘数据：?start=&end=&groupBy=&locationId=&keyId=
// 默认最近 30 天，按天分桶
func (rc *ReportController) Analytics(c *gin.Context) {
	end := time.Now().UTC()
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "end: want YYYY-MM-DD"})
			return
		}
		end = t
	}
	start := end.AddDate(0, 0, -29)
	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "start: want YYYY-MM-DD"})
			return
		}
		start = t
	}
	mode := report.Mode(c.DefaultQuery("groupBy", string(report.ModeDay)))

	loans, err := rc.Repo.LoanReportRows(c.Request.Context(), db.ReportQuery{
		Start:      start.Format("2006-01-02"),
		End:        end.Format("2006-01-02"),
		LocationID: c.Query("locationId"),
		KeyID:      c.Query("keyId"),
	})
	if err != nil {
		fail(c, err)
		return
	}

	times := make([]report.LoanTimes, 0, len(loans))
	for _, l := range loans {
		times = append(times, report.LoanTimes{
			CheckedOutAt: l.CheckedOutAt,
			DueAt:        l.DueAt,
			ReturnedAt:   l.ReturnedAt,
		})
	}
	res, err := report.Build(times, start, end, mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Dashboard 首页卡片：在柜/在外/逾期 + 最近动态
func (rc *ReportController) Dashboard(c *gin.Context) {
	stats, err := rc.Repo.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
