package http

import (
	"net/http"

	"fintrack/internal/analytics"
	"fintrack/internal/records"
)

const (
	transactionNoun = "Transaction"
	cardNoun        = "Credit card"
	paymentNoun     = "Payment"
)

func badParam(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, badRequestDetail(err))
}

// Transactions

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	t, err := s.ledger.CreateTransaction(r.Context(), req.toCore(0))
	if err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		badParam(w, err)
		return
	}
	txs, err := s.ledger.ListTransactions(r.Context(), page)
	if err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTransactionsByMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathPeriod(r)
	if err != nil {
		badParam(w, err)
		return
	}
	txs, err := s.ledger.TransactionsByMonth(r.Context(), year, month)
	if err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTransactionsInRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		badParam(w, err)
		return
	}
	txs, err := s.ledger.TransactionsInRange(r.Context(), start, end)
	if err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	t, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	t, err := s.ledger.UpdateTransaction(r.Context(), req.toCore(id))
	if err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		fail(w, r, err, transactionNoun)
		return
	}
	writeMessage(w, "Transaction deleted successfully")
}

// Credit cards

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	c, err := s.ledger.CreateCard(r.Context(), req.toCore(0))
	if err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.ledger.ListCards(r.Context())
	if err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	c, err := s.ledger.GetCard(r.Context(), id)
	if err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	c, err := s.ledger.UpdateCard(r.Context(), req.toCore(id))
	if err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	if err := s.ledger.DeleteCard(r.Context(), id); err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	writeMessage(w, "Credit card deleted successfully")
}

func (s *Server) handleCardUtilization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	card, err := s.ledger.GetCard(r.Context(), id)
	if err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	txs, err := s.ledger.TransactionsByCard(r.Context(), id)
	if err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Utilization(card, txs, s.today()))
}

// Card payments

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	p, err := s.ledger.CreatePayment(r.Context(), req.toCore(0))
	if err != nil {
		// the only lookup on create is the card
		fail(w, r, err, cardNoun)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		badParam(w, err)
		return
	}
	ps, err := s.ledger.ListPayments(r.Context(), page)
	if err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handlePaymentsByCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		badParam(w, err)
		return
	}
	if _, err := s.ledger.GetCard(r.Context(), id); err != nil {
		fail(w, r, err, cardNoun)
		return
	}
	ps, err := s.ledger.PaymentsByCard(r.Context(), id)
	if err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	writeJSON(w, http.StatusOK, records.Window(ps, page))
}

func (s *Server) handlePaymentsInRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		badParam(w, err)
		return
	}
	ps, err := s.ledger.PaymentsInRange(r.Context(), start, end)
	if err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	p, err := s.ledger.GetPayment(r.Context(), id)
	if err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	if _, err := s.ledger.GetPayment(r.Context(), id); err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	p, err := s.ledger.UpdatePayment(r.Context(), req.toCore(id))
	if err != nil {
		// the payment exists, so a missing record here is the card
		fail(w, r, err, cardNoun)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}
	if err := s.ledger.DeletePayment(r.Context(), id); err != nil {
		fail(w, r, err, paymentNoun)
		return
	}
	writeMessage(w, "Payment deleted successfully")
}
