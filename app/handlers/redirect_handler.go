package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Kusanagi/app/middleware"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/gofiber/fiber/v3"
)

// RedirectHandlerInterface defines contract for the public affiliate redirect
type RedirectHandlerInterface interface {
	Visit(c fiber.Ctx) error
}

type RedirectHandler struct {
	flow businessflow.RedirectFlow
}

func NewRedirectHandler(flow businessflow.RedirectFlow) RedirectHandlerInterface {
	return &RedirectHandler{flow: flow}
}

// Visit logs the click and redirects to the campaign's affiliate URL
// @Summary Visit Affiliate Link
// @Tags Redirect
// @Produce json
// @Param token path string true "Redirect token"
// @Success 302 {string} string "Redirect"
// @Failure 404 {object} any
// @Failure 500 {object} any
// @Router /a/{token} [get]
func (h *RedirectHandler) Visit(c fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).SendString("invalid link")
	}
	ua := c.Get("User-Agent")
	ip := c.IP()
	var referrer *string
	if ref := c.Get("Referer"); ref != "" {
		referrer = &ref
	}

	destination, err := h.flow.Visit(h.createRequestContext(c, "/a/"+token), token, &ua, &ip, referrer)
	if err != nil {
		if businessflow.IsRedirectTokenNotFound(err) {
			middleware.RedirectClicks.WithLabelValues("not_found").Inc()
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		middleware.RedirectClicks.WithLabelValues("error").Inc()
		log.Println("Affiliate redirect failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	middleware.RedirectClicks.WithLabelValues("ok").Inc()
	c.Redirect().Status(fiber.StatusFound).To(destination)
	return nil
}

func (h *RedirectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *RedirectHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
