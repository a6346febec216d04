package apihttp

import (
	"net/http"
	"strconv"

	"examrecord/internal/apperr"
	"examrecord/internal/auth"
	"examrecord/internal/gateway/openopus"
	"examrecord/internal/gateway/wikidata"
	"examrecord/internal/logger"
	"examrecord/internal/report"
	"examrecord/internal/resolver"
	"examrecord/internal/store/gormstore"

	"github.com/gin-gonic/gin"
)

// Router holds the handlers' dependencies.
type Router struct {
	Reports          *report.Service
	Auth             *auth.Service
	Store            *gormstore.Store
	Wikidata         *wikidata.Client
	Openopus         *openopus.Client
	MaxSearchResults int
}

// Register mounts every API route under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/auth/magic-link", r.handleMagicLink)
	group.GET("/auth/verify", r.handleVerify)
	group.POST("/auth/guest", r.handleGuestLogin)
	group.GET("/auth/me", r.handleMe)

	group.POST("/reports", r.handleSubmitReport)
	group.POST("/reports/:id/vote", r.handleVote)
	group.POST("/reports/:id/flag", r.handleFlag)

	group.GET("/events/:region/:discipline/:year", r.handleViewEvent)
	group.GET("/composers/search", r.handleComposerSearch)
	group.GET("/works/search", r.handleWorkSearch)
}

// respondError maps the core taxonomy onto HTTP statuses. Anything outside
// it is a 500 with a generic body; the cause stays in the log.
func respondError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsBadInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.IsExternalLookup(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type magicLinkRequest struct {
	Email string `json:"email" binding:"required"`
}

func (r *Router) handleMagicLink(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if _, err := r.Auth.RequestMagicLink(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "magic link sent (check server log)"})
}

func (r *Router) handleVerify(c *gin.Context) {
	token := c.Query("token")
	user, err := r.Auth.UserByToken(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}
	r.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "authenticated", "email": user.Email})
}

func (r *Router) handleGuestLogin(c *gin.Context) {
	token, user, err := r.Auth.GuestLogin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	r.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "guest authenticated", "token": token, "email": user.Email})
}

func (r *Router) handleMe(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

func (r *Router) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(r.Auth.Tokens().TTL().Seconds())
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", false, true)
}

type submitRequest struct {
	EventID         uint                   `json:"event_id" binding:"required"`
	Composer        resolver.ComposerInput `json:"composer"`
	Work            resolver.WorkInput     `json:"work"`
	Scope           string                 `json:"scope"`
	MovementDetails string                 `json:"movement_details"`
}

func (r *Router) handleSubmitReport(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report payload"})
		return
	}
	result, err := r.Reports.Submit(c.Request.Context(), user.ID, report.SubmitInput{
		EventID:         req.EventID,
		Composer:        req.Composer,
		Work:            req.Work,
		Scope:           report.Scope(req.Scope),
		MovementDetails: req.MovementDetails,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	status := "corroborated"
	if result.Created {
		status = "created"
	}
	c.JSON(http.StatusOK, gin.H{"id": result.ReportID, "status": status})
}

// handleVote and handleFlag share the soft-auth contract: an anonymous
// caller gets the current event state plus an auth_required marker so the
// client can prompt login inline instead of showing an error page.
func (r *Router) handleVote(c *gin.Context) {
	reportID, ok := pathID(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	if user == nil {
		r.respondAuthRequired(c, reportID)
		return
	}
	view, err := r.Reports.CastVote(c.Request.Context(), user.ID, reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": view})
}

func (r *Router) handleFlag(c *gin.Context) {
	reportID, ok := pathID(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	if user == nil {
		r.respondAuthRequired(c, reportID)
		return
	}
	view, err := r.Reports.Flag(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": view})
}

func (r *Router) respondAuthRequired(c *gin.Context, reportID uint) {
	view, err := r.Reports.ViewForReport(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_required": true, "event": view})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return 0, false
	}
	return uint(id), true
}

func (r *Router) handleViewEvent(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	view, err := r.Reports.ViewEvent(c.Request.Context(), c.Param("region"), c.Param("discipline"), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (r *Router) handleComposerSearch(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be at least 2 characters"})
		return
	}
	switch c.DefaultQuery("source", "local") {
	case "local":
		composers, err := r.Store.SearchComposers(c.Request.Context(), query, r.MaxSearchResults)
		if err != nil {
			respondError(c, err)
			return
		}
		results := make([]gin.H, 0, len(composers))
		for _, comp := range composers {
			results = append(results, gin.H{
				"id":          comp.ID,
				"name":        comp.Name,
				"is_verified": comp.IsVerified,
			})
		}
		c.JSON(http.StatusOK, results)
	case "external":
		results, err := r.Wikidata.SearchComposers(c.Request.Context(), query)
		if err != nil {
			respondError(c, apperr.ExternalLookup("wikidata", err))
			return
		}
		if results == nil {
			results = []wikidata.ComposerResult{}
		}
		c.JSON(http.StatusOK, results)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be local or external"})
	}
}

func (r *Router) handleWorkSearch(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be at least 2 characters"})
		return
	}
	switch c.DefaultQuery("source", "local") {
	case "local":
		works, err := r.Store.SearchWorks(c.Request.Context(), query, r.MaxSearchResults)
		if err != nil {
			respondError(c, err)
			return
		}
		results := make([]gin.H, 0, len(works))
		for _, w := range works {
			results = append(results, gin.H{
				"id":          w.ID,
				"title":       w.Title,
				"nickname":    w.Nickname,
				"composer_id": w.ComposerID,
				"is_verified": w.IsVerified,
			})
		}
		c.JSON(http.StatusOK, results)
	case "external":
		composerID := c.Query("composer_id")
		if composerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "composer_id is required for external work search"})
			return
		}
		results, err := r.Openopus.SearchWorks(c.Request.Context(), query, composerID)
		if err != nil {
			respondError(c, apperr.ExternalLookup("openopus", err))
			return
		}
		if results == nil {
			results = []openopus.Work{}
		}
		c.JSON(http.StatusOK, results)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be local or external"})
	}
}
