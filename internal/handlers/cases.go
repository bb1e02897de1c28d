package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legalease/internal/middleware"
	"legalease/internal/models"
	"legalease/internal/service"
)

type attachmentResponse struct {
	Mime      string `json:"mime"`
	SizeBytes int64  `json:"sizeBytes"`
	URL       string `json:"url"`
}

type appointmentResponse struct {
	Reference string    `json:"reference"`
	At        time.Time `json:"at"`
}

type caseResponse struct {
	ID          string               `json:"id"`
	ClientID    string               `json:"clientId"`
	LawyerID    string               `json:"lawyerId"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	CaseType    string               `json:"caseType"`
	Status      string               `json:"status"`
	Attachment  *attachmentResponse  `json:"attachment,omitempty"`
	Appointment *appointmentResponse `json:"appointment,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func toCaseResponse(c models.Case) caseResponse {
	resp := caseResponse{
		ID:          c.ID,
		ClientID:    c.ClientID,
		LawyerID:    c.LawyerID,
		Title:       c.Title,
		Description: c.Description,
		CaseType:    c.CaseType,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
	if c.Attachment != nil {
		resp.Attachment = &attachmentResponse{
			Mime:      c.Attachment.Mime,
			SizeBytes: c.Attachment.SizeBytes,
			URL:       "/cases/" + c.ID + "/attachment",
		}
	}
	if c.Appointment != nil {
		resp.Appointment = &appointmentResponse{Reference: c.Appointment.Reference, At: c.Appointment.At.UTC()}
	}
	return resp
}

func toCaseResponses(cases []models.Case) []caseResponse {
	out := make([]caseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, toCaseResponse(c))
	}
	return out
}

type createCaseRequest struct {
	LawyerID       string `json:"lawyerId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	CaseType       string `json:"caseType"`
	Attachment     string `json:"attachment"`
	AttachmentMime string `json:"attachmentMime"`
}

func (h HandlerSet) CreateCase(c *gin.Context) {
	limitBody(c, h.cfg.Limits.MaxAttachmentBytes)

	var req createCaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	created, err := h.cases.Create(c.Request.Context(), middleware.Principal(c), service.CreateCaseInput{
		LawyerID:       req.LawyerID,
		Title:          req.Title,
		Description:    req.Description,
		CaseType:       req.CaseType,
		Attachment:     req.Attachment,
		AttachmentMime: req.AttachmentMime,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": true, "caseId": created.ID, "case": toCaseResponse(created)})
}

func (h HandlerSet) ClientCases(c *gin.Context) {
	cases, err := h.cases.ListForClient(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "cases": toCaseResponses(cases)})
}

func (h HandlerSet) LawyerCases(c *gin.Context) {
	cases, err := h.cases.ListForLawyer(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "cases": toCaseResponses(cases)})
}

func (h HandlerSet) LawyerStats(c *gin.Context) {
	stats, err := h.cases.Stats(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "stats": statsResponse{Cases: stats.Cases, Clients: stats.Clients}})
}

func (h HandlerSet) GetCase(c *gin.Context) {
	found, err := h.cases.Get(c.Request.Context(), middleware.Principal(c), c.Param("caseId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "case": toCaseResponse(found)})
}

// CaseAttachment returns the document as a data URL; a case without one
// answers attachment: null.
func (h HandlerSet) CaseAttachment(c *gin.Context) {
	transport, ok, err := h.cases.Attachment(c.Request.Context(), middleware.Principal(c), c.Param("caseId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": true, "attachment": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "attachment": transport})
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h HandlerSet) TransitionCase(c *gin.Context) {
	var req transitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.cases.Transition(c.Request.Context(), middleware.Principal(c), c.Param("caseId"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "case": toCaseResponse(updated)})
}

type appointmentRequest struct {
	Reference string    `json:"reference"`
	At        time.Time `json:"at"`
}

func (h HandlerSet) ScheduleAppointment(c *gin.Context) {
	var req appointmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.cases.ScheduleAppointment(c.Request.Context(), middleware.Principal(c), c.Param("caseId"), service.AppointmentInput{
		Reference: req.Reference,
		At:        req.At,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "case": toCaseResponse(updated)})
}
