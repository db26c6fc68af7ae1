// Package api is the gin HTTP surface. Handlers stay thin: parse, call the
// service, map errors to statuses.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satyam1256/disaster/internal/service"
	"github.com/satyam1256/disaster/pkg/models"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires every route. hub serves the websocket endpoint.
func RegisterRoutes(r *gin.Engine, h *Handler, hub http.Handler) {
	r.GET("/health", h.Health)
	r.GET("/ws", gin.WrapH(hub))

	// Rate limit classes are shared across the routes of a class.
	general := RateLimit(100, 15*time.Minute)
	geocoding := RateLimit(5, time.Minute)
	imageVerify := RateLimit(3, time.Minute)
	reportSubmit := RateLimit(10, 5*time.Minute)
	adminMut := RateLimit(20, 5*time.Minute)
	admin := RequireRole(RoleAdmin)

	authed := r.Group("/", Auth(), general)

	authed.POST("/geocode", geocoding, h.Geocode)

	disasters := authed.Group("/disasters")
	{
		disasters.POST("", h.CreateDisaster)
		disasters.GET("", h.ListDisasters)
		disasters.GET("/:id", h.GetDisaster)
		disasters.PUT("/:id", admin, adminMut, h.UpdateDisaster)
		disasters.DELETE("/:id", admin, adminMut, h.DeleteDisaster)

		disasters.GET("/:id/social-media", h.SocialMedia)
		disasters.GET("/:id/resources", h.DisasterResources)
		disasters.GET("/:id/official-updates", h.OfficialUpdates)
		disasters.POST("/:id/verify-image", admin, imageVerify, h.VerifyImage)
	}

	reports := authed.Group("/reports")
	{
		reports.POST("", reportSubmit, h.CreateReport)
		reports.GET("", h.ListAllReports)
		reports.GET("/:id", h.GetReport)
		reports.GET("/disaster/:disaster_id", h.ListReports)
		reports.GET("/disaster/:disaster_id/stats", h.ReportStats)
		reports.PUT("/:id", admin, adminMut, h.UpdateReport)
		reports.DELETE("/:id", admin, adminMut, h.DeleteReport)
		reports.PATCH("/:id/verify", admin, adminMut, h.VerifyReport)
	}

	resources := authed.Group("/resources")
	{
		resources.POST("", h.CreateResource)
		resources.PUT("/:id", admin, adminMut, h.UpdateResource)
		resources.DELETE("/:id", admin, adminMut, h.DeleteResource)
		resources.GET("/disaster/:disaster_id", h.ResourcesByDisaster)
		resources.GET("/disaster/:disaster_id/type", h.ResourcesByDisasterAndType)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps service errors to HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNoLocation):
		c.JSON(http.StatusNotFound, gin.H{"error": "no location found"})
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Geocode: POST /geocode
// Body: {"description": "...", "location_name": "..."} (at least one required)
func (h *Handler) Geocode(c *gin.Context) {
	var body struct {
		Description  string `json:"description"`
		LocationName string `json:"location_name"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if body.Description == "" && body.LocationName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description or location_name required"})
		return
	}
	res, err := h.svc.Geocode(c.Request.Context(), body.Description, body.LocationName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreateDisaster: POST /disasters
func (h *Handler) CreateDisaster(c *gin.Context) {
	var d models.Disaster
	if err := c.BindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if d.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	u, _ := currentUser(c)
	created, err := h.svc.CreateDisaster(c.Request.Context(), &d, u.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListDisasters: GET /disasters?tag=flood
func (h *Handler) ListDisasters(c *gin.Context) {
	res, err := h.svc.Disasters(c.Request.Context(), c.Query("tag"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(res)},
		"data": res,
	})
}

func (h *Handler) GetDisaster(c *gin.Context) {
	res, err := h.svc.Disaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateDisaster: PUT /disasters/:id (admin)
func (h *Handler) UpdateDisaster(c *gin.Context) {
	var patch models.DisasterPatch
	if err := c.BindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	u, _ := currentUser(c)
	updated, err := h.svc.UpdateDisaster(c.Request.Context(), c.Param("id"), patch, u.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteDisaster(c *gin.Context) {
	u, _ := currentUser(c)
	if err := h.svc.DeleteDisaster(c.Request.Context(), c.Param("id"), u.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// SocialMedia: GET /disasters/:id/social-media
func (h *Handler) SocialMedia(c *gin.Context) {
	posts, err := h.svc.SocialMedia(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// DisasterResources: GET /disasters/:id/resources?lat=..&lon=..&radius=10
func (h *Handler) DisasterResources(c *gin.Context) {
	h.resolveResources(c, c.Param("id"), "")
}

// OfficialUpdates: GET /disasters/:id/official-updates
func (h *Handler) OfficialUpdates(c *gin.Context) {
	updates, err := h.svc.OfficialUpdates(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updates)
}

// VerifyImage: POST /disasters/:id/verify-image (admin)
// Body: {"image_url": "..."}
func (h *Handler) VerifyImage(c *gin.Context) {
	var body struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if body.ImageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_url is required"})
		return
	}
	verdict, err := h.svc.VerifyImage(c.Request.Context(), c.Param("id"), body.ImageURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": body.ImageURL, "verdict": verdict})
}

// CreateReport: POST /reports
func (h *Handler) CreateReport(c *gin.Context) {
	var r models.Report
	if err := c.BindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if r.DisasterID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disaster_id is required"})
		return
	}
	u, _ := currentUser(c)
	if r.UserID == "" {
		r.UserID = u.ID
	}
	created, err := h.svc.CreateReport(c.Request.Context(), &r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListAllReports: GET /reports?verification_status=pending&user_id=..
func (h *Handler) ListAllReports(c *gin.Context) {
	f := models.ReportFilter{
		VerificationStatus: c.Query("verification_status"),
		UserID:             c.Query("user_id"),
		Limit:              parseLimit(c.DefaultQuery("limit", "100")),
		Offset:             parseOffset(c.Query("offset")),
	}
	res, err := h.svc.AllReports(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(res), "limit": f.Limit, "offset": f.Offset},
		"data": res,
	})
}

func (h *Handler) GetReport(c *gin.Context) {
	res, err := h.svc.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListReports: GET /reports/disaster/:disaster_id?verification_status=..&limit=..&offset=..
func (h *Handler) ListReports(c *gin.Context) {
	f := models.ReportFilter{
		VerificationStatus: c.Query("verification_status"),
		Limit:              parseLimit(c.DefaultQuery("limit", "50")),
		Offset:             parseOffset(c.Query("offset")),
	}
	res, err := h.svc.Reports(c.Request.Context(), c.Param("disaster_id"), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(res), "limit": f.Limit, "offset": f.Offset},
		"data": res,
	})
}

// ReportStats: GET /reports/disaster/:disaster_id/stats
func (h *Handler) ReportStats(c *gin.Context) {
	stats, err := h.svc.ReportStats(c.Request.Context(), c.Param("disaster_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UpdateReport: PUT /reports/:id (admin)
func (h *Handler) UpdateReport(c *gin.Context) {
	var patch models.ReportPatch
	if err := c.BindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	updated, err := h.svc.UpdateReport(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteReport(c *gin.Context) {
	if err := h.svc.DeleteReport(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// VerifyReport: PATCH /reports/:id/verify (admin)
// Body: {"status": "verified"} or {"status": "rejected"}
func (h *Handler) VerifyReport(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	updated, err := h.svc.VerifyReport(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CreateResource: POST /resources
func (h *Handler) CreateResource(c *gin.Context) {
	var r models.Resource
	if err := c.BindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if r.DisasterID == "" || r.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disaster_id and name are required"})
		return
	}
	created, err := h.svc.CreateResource(c.Request.Context(), &r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateResource: PUT /resources/:id (admin)
func (h *Handler) UpdateResource(c *gin.Context) {
	var patch models.ResourcePatch
	if err := c.BindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	updated, err := h.svc.UpdateResource(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteResource(c *gin.Context) {
	if err := h.svc.DeleteResource(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// ResourcesByDisaster: GET /resources/disaster/:disaster_id?lat=..&lon=..&radius=10
func (h *Handler) ResourcesByDisaster(c *gin.Context) {
	h.resolveResources(c, c.Param("disaster_id"), "")
}

// ResourcesByDisasterAndType: GET /resources/disaster/:disaster_id/type?type=shelter&lat=..&lon=..
func (h *Handler) ResourcesByDisasterAndType(c *gin.Context) {
	rtype := c.Query("type")
	if rtype == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type parameter is required"})
		return
	}
	h.resolveResources(c, c.Param("disaster_id"), rtype)
}

// resolveResources parses the spatial query and runs the resolver. lat and
// lon are required; a bad pair is a client error, not a fallback trigger.
func (h *Handler) resolveResources(c *gin.Context, disasterID, rtype string) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing lat/lon parameters"})
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat/lon out of range"})
		return
	}
	radius := 0.0
	if rs := c.Query("radius"); rs != "" {
		r, err := strconv.ParseFloat(rs, 64)
		if err != nil || r < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius parameter"})
			return
		}
		radius = r
	}

	res, err := h.svc.ResourcesNear(c.Request.Context(), disasterID, lat, lon, radius, rtype)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// parseLimit ensures a sane integer limit, with bounds
func parseLimit(s string) int {
	l, err := strconv.Atoi(s)
	if err != nil || l <= 0 {
		return 50
	}
	if l > 200 {
		return 200
	}
	return l
}

func parseOffset(s string) int {
	o, err := strconv.Atoi(s)
	if err != nil || o < 0 {
		return 0
	}
	return o
}
