package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallerhq/backoffice/internal/models"
)

// The six collections share identical handler shapes, so the handlers below
// are thin bindings over three generic helpers. bind stamps the record with
// the authenticated owner and, for updates, the path id: clients never choose
// either.

func listRecords[T any](s *Server, w http.ResponseWriter, r *http.Request,
	fetch func(context.Context, string) ([]T, error)) {
	records, err := fetch(r.Context(), UserID(r.Context()))
	if err != nil {
		s.respondStoreError(w, err, "errors.load_failed")
		return
	}
	if records == nil {
		records = []T{}
	}
	respondJSON(w, http.StatusOK, records)
}

func createRecord[T any](s *Server, w http.ResponseWriter, r *http.Request,
	create func(context.Context, *T) error, bind func(*T, string, string)) {
	var record T
	if err := decode(r, &record); err != nil {
		s.respondError(w, http.StatusBadRequest, "errors.invalid_request")
		return
	}
	bind(&record, UserID(r.Context()), "")

	if err := create(r.Context(), &record); err != nil {
		s.respondStoreError(w, err, "errors.save_failed")
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

func updateRecord[T any](s *Server, w http.ResponseWriter, r *http.Request,
	update func(context.Context, *T) error, bind func(*T, string, string)) {
	var record T
	if err := decode(r, &record); err != nil {
		s.respondError(w, http.StatusBadRequest, "errors.invalid_request")
		return
	}
	bind(&record, UserID(r.Context()), chi.URLParam(r, "id"))

	if err := update(r.Context(), &record); err != nil {
		s.respondStoreError(w, err, "errors.save_failed")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request,
	del func(context.Context, string, string) error) {
	if err := del(r.Context(), chi.URLParam(r, "id"), UserID(r.Context())); err != nil {
		s.respondStoreError(w, err, "errors.delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- service orders ----------------------------------------------------------

func bindOrder(o *models.ServiceOrder, ownerID, id string) {
	o.OwnerID = ownerID
	o.ID = id
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.gw.ListOrders)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, s.gw.CreateOrder, bindOrder)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, s.gw.UpdateOrder, bindOrder)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.gw.DeleteOrder)
}

// --- casual expenses ---------------------------------------------------------

func bindCasual(e *models.CasualExpense, ownerID, id string) {
	e.OwnerID = ownerID
	e.ID = id
}

func (s *Server) handleListCasualExpenses(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.gw.ListCasualExpenses)
}

func (s *Server) handleCreateCasualExpense(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, s.gw.CreateCasualExpense, bindCasual)
}

func (s *Server) handleUpdateCasualExpense(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, s.gw.UpdateCasualExpense, bindCasual)
}

func (s *Server) handleDeleteCasualExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.gw.DeleteCasualExpense)
}

// --- budget expenses ---------------------------------------------------------

func bindBudget(e *models.BudgetExpense, ownerID, id string) {
	e.OwnerID = ownerID
	e.ID = id
}

func (s *Server) handleListBudgetExpenses(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.gw.ListBudgetExpenses)
}

func (s *Server) handleCreateBudgetExpense(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, s.gw.CreateBudgetExpense, bindBudget)
}

func (s *Server) handleUpdateBudgetExpense(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, s.gw.UpdateBudgetExpense, bindBudget)
}

func (s *Server) handleDeleteBudgetExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.gw.DeleteBudgetExpense)
}

// --- licenses ----------------------------------------------------------------

func bindLicense(l *models.License, ownerID, id string) {
	l.OwnerID = ownerID
	l.ID = id
}

func (s *Server) handleListLicenses(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.gw.ListLicenses)
}

func (s *Server) handleCreateLicense(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, s.gw.CreateLicense, bindLicense)
}

func (s *Server) handleUpdateLicense(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, s.gw.UpdateLicense, bindLicense)
}

func (s *Server) handleDeleteLicense(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.gw.DeleteLicense)
}

// --- password entries --------------------------------------------------------

func bindPassword(p *models.PasswordEntry, ownerID, id string) {
	p.OwnerID = ownerID
	p.ID = id
}

func (s *Server) handleListPasswords(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.gw.ListPasswords)
}

func (s *Server) handleCreatePassword(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, s.gw.CreatePassword, bindPassword)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, s.gw.UpdatePassword, bindPassword)
}

func (s *Server) handleDeletePassword(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.gw.DeletePassword)
}

// handleVerifyPassword checks a candidate password against a stored entry
// without exposing the stored material.
func (s *Server) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "errors.invalid_request")
		return
	}

	match, err := s.gw.VerifyPassword(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()), req.Password)
	if err != nil {
		s.respondStoreError(w, err, "errors.load_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"match": match})
}

// --- server credentials ------------------------------------------------------

func bindServer(sc *models.ServerCredential, ownerID, id string) {
	sc.OwnerID = ownerID
	sc.ID = id
}

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	listRecords(s, w, r, s.gw.ListServers)
}

func (s *Server) handleCreateServer(w http.ResponseWriter, r *http.Request) {
	createRecord(s, w, r, s.gw.CreateServer, bindServer)
}

func (s *Server) handleUpdateServer(w http.ResponseWriter, r *http.Request) {
	updateRecord(s, w, r, s.gw.UpdateServer, bindServer)
}

func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.gw.DeleteServer)
}
