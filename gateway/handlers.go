package gateway

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/example/possales/pkg/audit"
	"github.com/example/possales/pkg/auth"
	"github.com/example/possales/pkg/orders"
	"github.com/example/possales/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const auditPageSize = 50

type credentialsRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type finalizeRequest struct {
	Items []orders.CartItem `json:"items"`
}

func (g *Gateway) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": g.config.Server.Name,
		"links": gin.H{
			"login":     "/login",
			"signup":    "/signup",
			"invoice":   "/invoice",
			"history":   "/history",
			"analytics": "/analytics",
			"docs":      "/swagger/index.html",
		},
	})
}

func (g *Gateway) health(c *gin.Context) {
	if err := g.deps.Database.Ping(c.Request.Context()); err != nil {
		g.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (g *Gateway) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

func (g *Gateway) signupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", nil)
}

func (g *Gateway) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := g.deps.Auth.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		g.writeError(c, err)
		return
	}

	g.logger.Info("User signed up", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"status": "success", "user_id": user.ID})
}

func (g *Gateway) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := g.deps.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		g.writeError(c, err)
		return
	}

	g.setSession(c, token, int(g.deps.Auth.TokenTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"status": "success", "user_id": user.ID})
}

func (g *Gateway) logout(c *gin.Context) {
	g.setSession(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (g *Gateway) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", g.config.Auth.CookieSecure, true)
}

func (g *Gateway) catalog(c *gin.Context) {
	products, err := g.deps.Orders.Catalog(c.Request.Context())
	if err != nil {
		g.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (g *Gateway) finalizeOrder(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(c)
	order, err := g.deps.Orders.Finalize(c.Request.Context(), user.ID, req.Items)
	if err != nil {
		g.writeError(c, err)
		return
	}

	g.deps.Analytics.Invalidate(c.Request.Context())
	if g.deps.Auditor != nil {
		g.deps.Auditor.Record(audit.Event{
			Action:  audit.ActionOrderFinalized,
			OrderID: order.ID,
			UserID:  user.ID,
			Data: map[string]interface{}{
				"items":        len(order.Items),
				"total_amount": order.TotalAmount.StringFixed(2),
				"gst_amount":   order.GSTAmount.StringFixed(2),
				"final_amount": order.FinalAmount.StringFixed(2),
			},
			At: order.OrderTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "order_id": order.ID})
}

func (g *Gateway) history(c *gin.Context) {
	user := currentUser(c)
	list, err := g.deps.Orders.History(c.Request.Context(), user.ID)
	if err != nil {
		g.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (g *Gateway) orderAudit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		abortError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	if g.deps.AuditLogs == nil {
		abortError(c, http.StatusServiceUnavailable, "audit log is not configured")
		return
	}

	user := currentUser(c)
	if _, err := g.deps.Orders.Order(c.Request.Context(), uint(id), user.ID); err != nil {
		g.writeError(c, err)
		return
	}

	logs, err := g.deps.AuditLogs.GetAuditLogs(c.Request.Context(), uint(id), auditPageSize)
	if err != nil {
		g.logger.Error("Failed to read audit log", zap.Uint64("order_id", id), zap.Error(err))
		abortError(c, http.StatusInternalServerError, "failed to read audit log")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "audit": logs})
}

func (g *Gateway) analytics(c *gin.Context) {
	asOf := g.deps.Analytics.Today()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, g.deps.Analytics.Location())
		if err != nil {
			abortError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	report, err := g.deps.Analytics.Report(c.Request.Context(), asOf)
	if err != nil {
		g.logger.Error("Failed to build analytics report", zap.Error(err))
		abortError(c, http.StatusInternalServerError, "failed to build analytics report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// writeError maps service errors onto HTTP responses. Storage details are
// logged, never returned.
func (g *Gateway) writeError(c *gin.Context, err error) {
	var persistErr *orders.PersistenceError
	switch {
	case errors.Is(err, orders.ErrInvalidRequest), errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, auth.ErrInvalidCredentials):
		abortError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrAuthFailed):
		abortError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrDuplicateIdentity):
		abortError(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		abortError(c, http.StatusNotFound, "not found")
	case errors.As(err, &persistErr):
		g.logger.Error("Storage failure", zap.String("op", persistErr.Op), zap.Error(persistErr.Err))
		abortError(c, http.StatusInternalServerError, "failed to save order")
	default:
		g.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		abortError(c, http.StatusInternalServerError, "internal error")
	}
}
