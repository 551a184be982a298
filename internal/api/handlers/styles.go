package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/beatstoch-api/internal/models"
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/gin-gonic/gin"
)

// ListStyles handles GET /api/v1/styles
func ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": StyleSummaries()})
}

// StyleSummaries describes every style by per-voice density
func StyleSummaries() []models.StyleSummary {
	names := pattern.StyleNames()
	out := make([]models.StyleSummary, 0, len(names))
	for _, name := range names {
		profile, err := pattern.ProfileFor(name)
		if err != nil {
			continue
		}
		density := make(map[string]float64, len(pattern.Voices))
		for _, v := range pattern.Voices {
			density[v.String()] = profile.Density(v)
		}
		out = append(out, models.StyleSummary{Name: name, Density: density})
	}
	return out
}
