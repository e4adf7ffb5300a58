package httpapi

import (
	"github.com/gin-gonic/gin"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), s.recovery(), s.ginLogger(), corsMiddleware())

	api := r.Group("/api")
	api.GET("/ping", s.handlePing)
	api.GET("/health", s.handleHealth)

	rep := api.Group("/reports")
	rep.GET("/filter-options", s.handleFilterOptions)
	rep.POST("/preview", s.handlePreview)
	rep.POST("/export/pdf", s.handleExport(s.pdf, mimePDF, "pdf"))
	rep.POST("/export/excel", s.handleExport(s.xlsx, mimeXLSX, "xlsx"))

	inv := api.Group("/inventory")
	inv.POST("/items/:id/outflows", s.handleOutflow)

	return r
}
