package http

import (
	"net/http"

	"fintrack/internal/analytics"
)

const (
	investmentNoun = "Investment"
	salaryNoun     = "Salary"
)

// Savings and investments

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	v, err := s.ledger.CreateInvestment(r.Context(), req.toCore(0))
	if err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := s.ledger.ListInvestments(r.Context())
	if err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	writeJSON(w, http.StatusOK, invs)
}

func (s *Server) handleGetInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	v, err := s.ledger.GetInvestment(r.Context(), id)
	if err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	var req investmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	v, err := s.ledger.UpdateInvestment(r.Context(), req.toCore(id))
	if err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	if err := s.ledger.DeleteInvestment(r.Context(), id); err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	writeMessage(w, "Investment deleted successfully")
}

// handleSavingsComparison compares this month's account balance with
// everything invested so far.
func (s *Server) handleSavingsComparison(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	txs, err := s.ledger.TransactionsByMonth(r.Context(), today.Year(), today.Month())
	if err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	invs, err := s.ledger.ListInvestments(r.Context())
	if err != nil {
		fail(w, r, err, investmentNoun)
		return
	}
	writeJSON(w, http.StatusOK, analytics.CompareSavings(txs, invs))
}

func (s *Server) handleProcessInvestments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.recurring.ProcessInvestments(r.Context(), s.today()))
}

// handleStartupCheck runs the same full pass the server runs at startup.
func (s *Server) handleStartupCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.recurring.Run(r.Context(), s.today()))
}

// Salaries

func (s *Server) handleCreateSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	v, err := s.ledger.CreateSalary(r.Context(), req.toCore(0))
	if err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListSalaries(w http.ResponseWriter, r *http.Request) {
	sal, err := s.ledger.ListSalaries(r.Context())
	if err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	writeJSON(w, http.StatusOK, sal)
}

func (s *Server) handleActiveSalaries(w http.ResponseWriter, r *http.Request) {
	sal, err := s.ledger.ActiveSalaries(r.Context())
	if err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	writeJSON(w, http.StatusOK, sal)
}

func (s *Server) handleGetSalary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	v, err := s.ledger.GetSalary(r.Context(), id)
	if err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateSalary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	var req salaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	v, err := s.ledger.UpdateSalary(r.Context(), req.toCore(id))
	if err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteSalary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	if err := s.ledger.DeleteSalary(r.Context(), id); err != nil {
		fail(w, r, err, salaryNoun)
		return
	}
	writeMessage(w, "Salary deleted successfully")
}

func (s *Server) handleProcessSalaries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.recurring.ProcessSalaries(r.Context(), s.today()))
}
