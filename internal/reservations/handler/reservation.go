package handler

import (
	"encoding/json"
	"net/http"

	"roombook/internal/reservations/service"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	engine  service.BookingService
	queries service.ReservationQueries
	log     *logger.Logger
}

func NewReservationHandler(engine service.BookingService, queries service.ReservationQueries, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		engine:  engine,
		queries: queries,
		log:     log,
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteBadRequest", "error", writeErr)
		}
		return
	}

	reservation, err := req.toModel()
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	created, err := h.engine.CreateBooking(r.Context(), reservation)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, toResponse(created)); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.queries.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", toResponse(reservation))
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	reservations, total, err := h.queries.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, toResponses(reservations), total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) GetByRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservations, err := h.queries.GetByRoom(r.Context(), ps.ByName("room_id"))
	if err != nil {
		h.writeError(w, "GetByRoom", err)
		return
	}
	h.writeSuccess(w, "GetByRoom", toResponses(reservations))
}

func (h *ReservationHandler) GetByCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservations, err := h.queries.GetByCustomer(r.Context(), ps.ByName("name"))
	if err != nil {
		h.writeError(w, "GetByCustomer", err)
		return
	}
	h.writeSuccess(w, "GetByCustomer", toResponses(reservations))
}

func (h *ReservationHandler) GetByDateRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start, err := httputil.ExtractDate(r, "start")
	if err != nil {
		h.writeError(w, "GetByDateRange", err)
		return
	}
	end, err := httputil.ExtractDate(r, "end")
	if err != nil {
		h.writeError(w, "GetByDateRange", err)
		return
	}

	reservations, err := h.queries.GetByDateRange(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "GetByDateRange", err)
		return
	}
	h.writeSuccess(w, "GetByDateRange", toResponses(reservations))
}

func (h *ReservationHandler) Count(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.queries.Count(r.Context())
	if err != nil {
		h.writeError(w, "Count", err)
		return
	}
	h.writeSuccess(w, "Count", countResponse{Count: count})
}

func (h *ReservationHandler) CountActive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.queries.CountActive(r.Context())
	if err != nil {
		h.writeError(w, "CountActive", err)
		return
	}
	h.writeSuccess(w, "CountActive", countResponse{Count: count})
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req updateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteBadRequest", "error", writeErr)
		}
		return
	}

	updates, err := req.toModel()
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	updated, err := h.engine.UpdateBooking(r.Context(), ps.ByName("id"), updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", toResponse(updated))
}

func (h *ReservationHandler) MarkPaid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	paid, err := h.engine.MarkPaid(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "MarkPaid", err)
		return
	}
	h.writeSuccess(w, "MarkPaid", toResponse(paid))
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.engine.CancelBooking(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/count", h.Count)
	router.GET("/api/v1/reservations/active/count", h.CountActive)
	router.GET("/api/v1/reservations/date-range", h.GetByDateRange)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.GET("/api/v1/reservations/room/:room_id", h.GetByRoom)
	router.GET("/api/v1/reservations/customer/:name", h.GetByCustomer)
	router.PATCH("/api/v1/reservations/id/:id", h.Update)
	router.PUT("/api/v1/reservations/id/:id/pay", h.MarkPaid)
	router.DELETE("/api/v1/reservations/id/:id", h.Cancel)
}
