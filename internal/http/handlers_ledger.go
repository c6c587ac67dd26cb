package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financaszen/internal/core"
	"financaszen/internal/services"
)

func (s *Server) transactionRoutes(r chi.Router) {
	res := &resource[core.Transaction]{s: s, repo: s.svc.Repos.Transactions}
	r.Get("/", s.handleListTransactions)
	r.Post("/", res.create)
	r.Get("/{id}", res.get)
	r.Put("/{id}", res.replace)
	r.Delete("/{id}", res.delete)
}

// handleListTransactions lists newest first with the optional filters.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	txs, err := s.svc.Ledger.Transactions(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) accountRoutes(r chi.Router) {
	r.Get("/balances", s.handleBalances)
	r.Get("/{id}/balance", s.handleBalance)
	mountCRUD[core.BankAccount](r, s, s.svc.Repos.Accounts,
		filterBy("type", func(a core.BankAccount, v string) bool { return string(a.Type) == v }))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Ledger.Balance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	bs, err := s.svc.Ledger.Balances(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if bs == nil {
		bs = []services.AccountBalance{}
	}
	writeJSON(w, http.StatusOK, bs)
}

func (s *Server) cardRoutes(r chi.Router) {
	r.Get("/{id}/statement", s.handleStatement)
	mountCRUD[core.CreditCard](r, s, s.svc.Repos.Cards)
}

// handleStatement defaults to the statement still open today.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	var year, month int
	if q.Get("year") == "" && q.Get("month") == "" {
		card, err := s.svc.Repos.Cards.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		year, month = services.OpenStatementMonth(card, s.today())
	} else {
		mp, err := ParseMonthParams(q, s.now().In(s.loc))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		year, month = mp.Year, mp.Month
	}
	st, err := s.svc.Ledger.Statement(r.Context(), id, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
