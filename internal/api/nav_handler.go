package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Section is one entry of the sidebar navigation.
type Section struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Sections lists the app's navigable sections in sidebar order.
var Sections = []Section{
	{Slug: "pt-coach", Title: "PT Coach", Path: "/pt-coach", Description: "Build, run and export workout cards."},
	{Slug: "pft-prep", Title: "PFT Prep", Path: "/pft-prep", Description: "Train for the physical fitness test."},
	{Slug: "nutrition", Title: "Nutrition", Path: "/nutrition", Description: "Fuel and recovery guidance."},
}

// Nav godoc
// @Summary Sidebar navigation
// @Tags Navigation
// @Produce json
// @Success 200 {array} Section
// @Router /nav [get]
func Nav(c *gin.Context) {
	c.JSON(http.StatusOK, Sections)
}

// GetSection godoc
// @Summary Section landing descriptor
// @Tags Navigation
// @Produce json
// @Param slug path string true "Section slug"
// @Success 200 {object} Section
// @Failure 404 {object} gin.H "Unknown section"
// @Router /sections/{slug} [get]
func GetSection(c *gin.Context) {
	slug := c.Param("slug")
	for _, s := range Sections {
		if s.Slug == slug {
			c.JSON(http.StatusOK, s)
			return
		}
	}
	abortWithError(c, http.StatusNotFound, "Section not found")
}
