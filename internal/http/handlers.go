package http

import (
	"net/http"

	"mycash/internal/core"
	"mycash/internal/dashboard"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := s.dash.Snapshot(r.Context(), filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(snap))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters, err := ParseFilters(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, perPage := ParsePagination(query, dashboard.DefaultPerPage)
	p, err := s.dash.Transactions(r.Context(), filters, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageDTO(p))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := req.Transaction()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/transactions/"+created.ID)
	writeJSON(w, http.StatusCreated, toTransactionDTO(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req PatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	paid, err := s.ledger.MarkPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(paid))
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := ParseLimit(r.URL.Query(), s.upcomingLimit, 100)
	items, err := s.dash.Upcoming(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUpcomingDTOs(items))
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	year, err := ParseYear(query, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	filters, err := ParseFilters(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	flow, err := s.dash.Flow(r.Context(), filters, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": toFlowDTOs(flow),
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, cards, err := s.dash.Accounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	raw := make([]core.CreditCard, len(cards))
	dto := AccountsDTO{
		BankAccounts: make([]BankAccountDTO, len(accounts)),
		CreditCards:  make([]CreditCardDTO, len(cards)),
	}
	for i, a := range accounts {
		dto.BankAccounts[i] = toBankAccountDTO(a)
	}
	for i, c := range cards {
		dto.CreditCards[i] = toCreditCardDTO(c)
		raw[i] = c.Card
	}
	dto.TotalBalance = core.TotalBalance(accounts, raw)
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleCreateBankAccount(w http.ResponseWriter, r *http.Request) {
	var req BankAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.ledger.CreateBankAccount(r.Context(), req.BankAccount())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBankAccountDTO(a))
}

func (s *Server) handleCreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req CreditCardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.ledger.CreateCreditCard(r.Context(), req.CreditCard())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCreditCardDTO(dashboard.SummarizeCards([]core.CreditCard{c})[0]))
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.dash.Members(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTOs(members))
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req MemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.ledger.CreateMember(r.Context(), req.Member())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberDTOs([]core.FamilyMember{m})[0])
}

func (s *Server) handleUpdateBankAccount(w http.ResponseWriter, r *http.Request) {
	var req BankAccountPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.ledger.UpdateBankAccount(r.Context(), r.PathValue("id"), req.Patch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBankAccountDTO(a))
}

func (s *Server) handleDeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBankAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req CreditCardPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.ledger.UpdateCreditCard(r.Context(), r.PathValue("id"), req.Patch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreditCardDTO(dashboard.SummarizeCards([]core.CreditCard{c})[0]))
}

func (s *Server) handleDeleteCreditCard(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteCreditCard(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.ledger.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTOs([]core.FamilyMember{m})[0])
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req MemberPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.ledger.UpdateMember(r.Context(), r.PathValue("id"), req.Patch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTOs([]core.FamilyMember{m})[0])
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.ListGoals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTOs(goals))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.ledger.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(g))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := req.Goal()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/goals/"+created.ID)
	writeJSON(w, http.StatusCreated, toGoalDTO(created))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.ledger.UpdateGoal(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
