package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yashpatel08/railsathi/internal/http/response"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/services"
)

const defaultMaxFormBytes = 32 << 20

type ComplaintHandler struct {
	log          *logger.Logger
	complaints   services.ComplaintService
	maxFormBytes int64
}

func NewComplaintHandler(log *logger.Logger, complaints services.ComplaintService, maxFormBytes int64) *ComplaintHandler {
	if maxFormBytes <= 0 {
		maxFormBytes = defaultMaxFormBytes
	}
	return &ComplaintHandler{
		log:          log.With("handler", "ComplaintHandler"),
		complaints:   complaints,
		maxFormBytes: maxFormBytes,
	}
}

func complainIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("complain_id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_complain_id", fmt.Errorf("invalid complain_id %q", c.Param("complain_id")))
		return 0, false
	}
	return id, true
}

func (h *ComplaintHandler) respondResult(c *gin.Context, message string, res *services.ComplaintResult) {
	for _, o := range res.Media {
		if o.Err != nil {
			h.log.Warn("media upload not attached", "complain_id", res.Complaint.ComplainID, "filename", o.Filename, "error", o.Err)
		}
	}
	response.RespondOK(c, message, newComplaintPayload(res.Complaint))
}

// GET /rs_microservice/complaint/get/:complain_id
func (h *ComplaintHandler) GetComplaint(c *gin.Context) {
	id, ok := complainIDParam(c)
	if !ok {
		return
	}
	complaint, err := h.complaints.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, "Complaint retrieved successfully", newComplaintPayload(complaint))
}

// GET /rs_microservice/complaint/get/date/:date_str?mobile_number=
func (h *ComplaintHandler) ListByDate(c *gin.Context) {
	rows, err := h.complaints.ListByDateAndMobile(c.Request.Context(), c.Param("date_str"), c.Query("mobile_number"))
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	out := make([]response.Envelope, 0, len(rows))
	for _, row := range rows {
		out = append(out, response.Envelope{Message: "Complaint retrieved successfully", Data: newComplaintPayload(row)})
	}
	c.JSON(http.StatusOK, out)
}

// POST /rs_microservice/complaint/add
func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	form, err := parseForm(c, h.maxFormBytes)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	fields, err := form.complaintFields()
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	h.log.Info("complaint create requested", "name", form.text("name"), "files", len(form.files))
	res, err := h.complaints.Create(c.Request.Context(), services.CreateComplaintInput{
		Fields:        fields,
		DateOfJourney: form.text("date_of_journey"),
		Files:         form.files,
	})
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	h.respondResult(c, "Complaint created successfully", res)
}

// PATCH /rs_microservice/complaint/update/:complain_id
func (h *ComplaintHandler) UpdateComplaint(c *gin.Context) {
	h.mutate(c, "Complaint updated successfully", h.complaints.Update)
}

// PUT /rs_microservice/complaint/update/:complain_id
func (h *ComplaintHandler) ReplaceComplaint(c *gin.Context) {
	h.mutate(c, "Complaint replaced successfully", h.complaints.Replace)
}

type mutation func(ctx context.Context, complainID int64, actor services.Actor, fields services.ComplaintFields, files []services.MediaFile) (*services.ComplaintResult, error)

func (h *ComplaintHandler) mutate(c *gin.Context, message string, apply mutation) {
	id, ok := complainIDParam(c)
	if !ok {
		return
	}
	form, err := parseForm(c, h.maxFormBytes)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	fields, err := form.complaintFields()
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	res, err := apply(c.Request.Context(), id, form.actor(), fields, form.files)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	h.respondResult(c, message, res)
}

// DELETE /rs_microservice/complaint/delete/:complain_id
func (h *ComplaintHandler) DeleteComplaint(c *gin.Context) {
	id, ok := complainIDParam(c)
	if !ok {
		return
	}
	form, err := parseForm(c, h.maxFormBytes)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	actor, err := form.requireActor()
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	if _, err := h.complaints.Delete(c.Request.Context(), id, actor); err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, "Complaint deleted successfully", nil)
}

// DELETE /rs_microservice/media/delete/:complain_id
func (h *ComplaintHandler) DeleteMedia(c *gin.Context) {
	id, ok := complainIDParam(c)
	if !ok {
		return
	}
	form, err := parseForm(c, h.maxFormBytes)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	actor, err := form.requireActor()
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	ids, err := form.mediaIDs("deleted_media_ids")
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	n, err := h.complaints.DeleteMedia(c.Request.Context(), id, actor, ids)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, fmt.Sprintf("%d media file(s) deleted successfully.", n), nil)
}
