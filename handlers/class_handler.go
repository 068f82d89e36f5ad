package handlers

import (
	"net/http"

	"github.com/dojoverse/dojo-system/services"
)

type ClassHandler struct {
	classService services.ClassService
}

func NewClassHandler(classService services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.ClassInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	class, err := h.classService.CreateClass(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"class": class}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClassHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "classID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	class, err := h.classService.GetClassByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"class": class}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classService.ListClasses(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"classes": classes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "classID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ClassInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	class, err := h.classService.UpdateClass(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"class": class}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "classID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.classService.DeleteClass(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
