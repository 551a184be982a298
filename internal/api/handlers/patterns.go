package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Conceptual-Machines/beatstoch-api/internal/api/middleware"
	"github.com/Conceptual-Machines/beatstoch-api/internal/logger"
	"github.com/Conceptual-Machines/beatstoch-api/internal/models"
	"github.com/Conceptual-Machines/beatstoch-api/internal/services"
	"github.com/gin-gonic/gin"
)

type PatternHandler struct {
	service *services.PatternService
}

func NewPatternHandler(service *services.PatternService) *PatternHandler {
	return &PatternHandler{service: service}
}

// Generate handles POST /api/v1/patterns
func (h *PatternHandler) Generate(c *gin.Context) {
	result, ok := h.generate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.Response(result))
}

// GenerateMIDI handles POST /api/v1/patterns/midi
func (h *PatternHandler) GenerateMIDI(c *gin.Context) {
	result, ok := h.generate(c)
	if !ok {
		return
	}
	h.sendMIDI(c, result)
}

func (h *PatternHandler) generate(c *gin.Context) (*services.GeneratedPattern, bool) {
	var req models.GeneratePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return nil, false
	}
	params, err := req.Params()
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	result, err := h.service.Generate(c.Request.Context(), params, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return result, true
}

// FromSong handles POST /api/v1/patterns/from-song
func (h *PatternHandler) FromSong(c *gin.Context) {
	var req models.FromSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	song, err := req.SongRequest()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), fromSongTimeout)
	defer cancel()

	fields := logger.WithContext(c)
	fields["title"] = req.Title
	fields["artist"] = req.Artist
	logger.Info("Generating pattern from song", fields)

	result, err := h.service.FromSong(ctx, song, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Response(result))
}

// Get handles GET /api/v1/patterns/:id
func (h *PatternHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Response(result))
}

// GetMIDI handles GET /api/v1/patterns/:id/midi
func (h *PatternHandler) GetMIDI(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.sendMIDI(c, result)
}

func (h *PatternHandler) sendMIDI(c *gin.Context, result *services.GeneratedPattern) {
	data, err := h.service.MIDI(result)
	if err != nil {
		respondError(c, fmt.Errorf("failed to encode midi: %w", err))
		return
	}
	if result.ID != "" {
		c.Header("X-Pattern-ID", result.ID)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.FileName(result)))
	c.Data(http.StatusOK, midiContentType, data)
}
