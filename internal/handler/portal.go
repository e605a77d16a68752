package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/jellydator/validation"

	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/middleware"
	"github.com/craftbooks/portal-server-go/internal/service"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// PortalHandler is the entire client-facing HTTP surface: link issuance,
// session introspection, the read endpoints, and the two guarded mutations.
type PortalHandler struct {
	tokenService    *service.TokenService
	resourceService *service.ResourceService
	estimateService *service.EstimateService
	paymentService  *service.PaymentService
	sendLimiter     *middleware.SendLinkLimiter
	companyName     string
	isProduction    bool
}

func NewPortalHandler(
	tokenService *service.TokenService,
	resourceService *service.ResourceService,
	estimateService *service.EstimateService,
	paymentService *service.PaymentService,
	sendLimiter *middleware.SendLinkLimiter,
	companyName string,
	isProduction bool,
) *PortalHandler {
	return &PortalHandler{
		tokenService:    tokenService,
		resourceService: resourceService,
		estimateService: estimateService,
		paymentService:  paymentService,
		sendLimiter:     sendLimiter,
		companyName:     companyName,
		isProduction:    isProduction,
	}
}

// Routes assembles the portal surface. The admission middlewares are
// passed in plain chi form so the wiring stays in main.
func (h *PortalHandler) Routes(
	session func(http.Handler) http.Handler,
	adminKey func(http.Handler) http.Handler,
	sendLinkLimit func(http.Handler) http.Handler,
	csrf func(http.Handler) http.Handler,
) chi.Router {
	r := chi.NewRouter()

	r.With(sendLinkLimit).Post("/auth/send-link", h.SendLink)
	r.With(adminKey).Post("/share", h.Share)

	r.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Use(session)

		r.Get("/me", h.Me)
		r.Post("/logout", h.Logout)

		r.Get("/projects", h.ListProjects)
		r.Get("/projects/{projectID}", h.GetProject)

		r.Get("/estimates", h.ListEstimates)
		r.Get("/estimates/{estimateID}", h.GetEstimate)
		r.Post("/estimates/{estimateID}/approve", h.ApproveEstimate)
		r.Post("/estimates/{estimateID}/reject", h.RejectEstimate)

		r.Get("/invoices", h.ListInvoices)
		r.Get("/invoices/{invoiceID}", h.GetInvoice)
		r.Post("/invoices/{invoiceID}/pay", h.PayInvoice)
	})

	return r
}

type issueLinkRequest struct {
	CompanyID   string `json:"companyId"`
	ClientID    string `json:"clientId"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
}

func (req *issueLinkRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.CompanyID, validation.Required.Error("companyId is required")),
		validation.Field(&req.ClientID, validation.Required.Error("clientId is required")),
		validation.Field(&req.Email,
			validation.Required.Error("email is required"),
			validation.Match(emailPattern).Error("email must be a valid address"),
		),
	)
}

// POST /portal/auth/send-link
// Issues a token and mails the portal link to the client.
func (h *PortalHandler) SendLink(w http.ResponseWriter, r *http.Request) {
	var req issueLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request").WithDetails(err))
		return
	}

	if !h.sendLimiter.Allow(req.Email) {
		writeError(w, apperrors.RateLimitExceeded())
		return
	}

	companyName := req.CompanyName
	if companyName == "" {
		companyName = h.companyName
	}

	tokenID, err := h.tokenService.SendLink(r.Context(), req.CompanyID, req.ClientID, req.Email, companyName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tokenId": tokenID,
	})
}

// POST /portal/share
// Same issuance path as send-link, but admission is the admin key and the
// link comes back in the response instead of going out by mail.
func (h *PortalHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req issueLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request").WithDetails(err))
		return
	}

	tokenID, link, err := h.tokenService.CreateLink(r.Context(), req.CompanyID, req.ClientID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tokenId": tokenID,
		"link":    link,
	})
}

// GET /portal/me
// Echoes the session scope. When the token arrived in the query string
// (the mailed link), it is moved into a cookie so the client can drop it
// from the URL.
func (h *PortalHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	if r.Header.Get(middleware.PortalTokenHeader) == "" {
		if raw := r.URL.Query().Get("token"); raw != "" {
			maxAge := int(time.Until(session.ExpiresAt).Seconds())
			if maxAge > 0 {
				middleware.SetPortalCookie(w, raw, maxAge, h.isProduction)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"companyId": session.CompanyID,
		"clientId":  session.ClientID,
		"email":     session.Email,
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
	})
}

// POST /portal/logout
// Tokens stay valid until expiry; logout only clears the cookie carrier.
func (h *PortalHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearPortalCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PortalHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	projects, err := h.resourceService.ListProjects(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
		"total":    len(projects),
	})
}

func (h *PortalHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	project, err := h.resourceService.GetProject(r.Context(), chi.URLParam(r, "projectID"), session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *PortalHandler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	estimates, err := h.resourceService.ListEstimates(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"estimates": estimates,
		"total":     len(estimates),
	})
}

func (h *PortalHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	estimate, err := h.resourceService.GetEstimate(r.Context(), chi.URLParam(r, "estimateID"), session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, estimate)
}

// POST /portal/estimates/{estimateID}/approve
func (h *PortalHandler) ApproveEstimate(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	if err := h.estimateService.Approve(r.Context(), chi.URLParam(r, "estimateID"), session); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// POST /portal/estimates/{estimateID}/reject
func (h *PortalHandler) RejectEstimate(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	if err := h.estimateService.Reject(r.Context(), chi.URLParam(r, "estimateID"), session); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PortalHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	invoices, err := h.resourceService.ListInvoices(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invoices": invoices,
		"total":    len(invoices),
	})
}

func (h *PortalHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	invoice, err := h.resourceService.GetInvoice(r.Context(), chi.URLParam(r, "invoiceID"), session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}

type payRequest struct {
	Amount float64 `json:"amount"`
}

// POST /portal/invoices/{invoiceID}/pay
// Validation order matters: the amount is checked before the invoice is
// even looked up, so a bad amount never reveals whether the id exists.
func (h *PortalHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetPortalSession(r.Context())

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	intent, err := h.paymentService.CreatePayment(r.Context(), chi.URLParam(r, "invoiceID"), req.Amount, session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"clientSecret": intent.ClientSecret,
		"intentId":     intent.ID,
	})
}
