package donations

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"foodshare/pkg/geo"
	"foodshare/pkg/metadata"
	"foodshare/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
	ListDonorDonations(ctx context.Context, donorID string, page, limit int) (*SearchResult, error)
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
}

type DonationHandler struct {
	service          Searcher
	logger           *zap.Logger
	defaults         SearchDefaults
	searchMiddleware []gin.HandlerFunc
}

func NewDonationHandler(service Searcher, logger *zap.Logger, defaults SearchDefaults, searchMiddleware ...gin.HandlerFunc) *DonationHandler {
	return &DonationHandler{
		service:          service,
		logger:           logger,
		defaults:         defaults,
		searchMiddleware: searchMiddleware,
	}
}

func (h *DonationHandler) RegisterRoutes(router gin.IRouter) {
	searchHandlers := append([]gin.HandlerFunc{}, h.searchMiddleware...)
	router.GET("/donations/search", append(searchHandlers, h.SearchDonations)...)
	router.GET("/donations/:id", h.GetDonation)
}

func (h *DonationHandler) RegisterProtectedRoutes(router gin.IRouter) {
	router.GET("/me/donations", h.GetMyDonations)
}

type searchFilters struct {
	Category  string   `json:"category"`
	Search    string   `json:"search"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    float64  `json:"radius"`
}

func (h *DonationHandler) SearchDonations(c *gin.Context) {
	query := h.parseSearchQuery(c).Normalize(h.defaults)

	result, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "Failed to fetch donations",
			"donations":  []models.Donation{},
			"pagination": models.NewPagination(0, 1, h.defaults.Limit),
		})
		return
	}

	filters := searchFilters{
		Category: string(query.Category),
		Search:   query.Term,
		Radius:   query.RadiusKm,
	}
	if query.Origin != nil {
		filters.Latitude = &query.Origin.Latitude
		filters.Longitude = &query.Origin.Longitude
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"donations":  result.Donations,
		"pagination": result.Pagination,
		"filters":    filters,
	})
}

func (h *DonationHandler) GetDonation(c *gin.Context) {
	id := c.Param("id")

	donation, err := h.service.GetDonation(c.Request.Context(), id)
	if errors.Is(err, ErrDonationNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Donation not found"})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch donation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "donation": donation})
}

func (h *DonationHandler) GetMyDonations(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), h.defaults.Limit)

	result, err := h.service.ListDonorDonations(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch donations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"donations":  result.Donations,
		"pagination": result.Pagination,
	})
}

// parseSearchQuery never fails: malformed numbers fall back to defaults and an
// incomplete or out of range origin disables the location filter.
func (h *DonationHandler) parseSearchQuery(c *gin.Context) SearchQuery {
	query := SearchQuery{
		Status:   metadata.StatusAvailable,
		Category: metadata.NormalizeCategory(c.Query("category")),
		Term:     strings.TrimSpace(c.Query("search")),
		RadiusKm: parseFloat(c.Query("radius"), h.defaults.RadiusKm),
		Page:     parseInt(c.Query("page"), 1),
		Limit:    parseInt(c.Query("limit"), h.defaults.Limit),
	}

	rawLatitude, rawLongitude := c.Query("latitude"), c.Query("longitude")
	if rawLatitude == "" || rawLongitude == "" {
		return query
	}

	latitude, latErr := strconv.ParseFloat(strings.TrimSpace(rawLatitude), 64)
	longitude, lonErr := strconv.ParseFloat(strings.TrimSpace(rawLongitude), 64)
	origin := geo.Point{Latitude: latitude, Longitude: longitude}
	if latErr != nil || lonErr != nil || !origin.Valid() {
		h.logger.Debug("ignoring invalid search origin",
			zap.String("latitude", rawLatitude),
			zap.String("longitude", rawLongitude),
		)
		return query
	}
	query.Origin = &origin

	return query
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseFloat(raw string, fallback float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return value
}
