// ABOUTME: HTTP handlers for the mock storefront API
// ABOUTME: Auth flows, generic collection CRUD, invoices, and user approval

package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

var errEmailTaken = errors.New("email already registered")

// ack is the body of acknowledgement-only responses
type ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData[T any](w http.ResponseWriter, status int, data T) {
	writeJSON(w, status, models.Envelope[T]{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, models.ErrorResponse{Success: false, Message: message})
}

// health reports that the API is up and how much data it holds
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.accountsMu.RLock()
	accounts := len(s.accounts)
	s.accountsMu.RUnlock()

	writeJSON(w, http.StatusOK, models.Health{
		Status:   "ok",
		Products: s.products.len(),
		Accounts: accounts,
	})
}

func (s *Server) login(adminOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, "Email and password are required", http.StatusBadRequest)
			return
		}

		s.accountsMu.RLock()
		acct, ok := s.accounts[normalizeEmail(req.Email)]
		s.accountsMu.RUnlock()
		if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
			s.logger.Warn("Authentication failed", "email", normalizeEmail(req.Email))
			writeError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}

		user, ok := s.users.get(acct.userID)
		if !ok {
			writeError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		if adminOnly && user.Role != models.RoleAdmin {
			writeError(w, "Admin access required", http.StatusForbidden)
			return
		}
		if !adminOnly && !acct.approved {
			writeError(w, "Account pending approval", http.StatusForbidden)
			return
		}

		accessToken, refreshToken, err := s.tokens.Issue(user)
		if err != nil {
			s.logger.Error("Failed to issue tokens", "error", err)
			writeError(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		writeData(w, http.StatusOK, models.AuthResponse{User: &user, AccessToken: accessToken, RefreshToken: refreshToken})
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, "Name, email, and password are required", http.StatusBadRequest)
		return
	}

	user, err := s.AddAccount(models.User{Name: req.Name, Email: req.Email, Phone: req.Phone, Role: models.RoleCustomer}, req.Password, false)
	if errors.Is(err, errEmailTaken) {
		writeError(w, "Email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		s.logger.Error("Failed to register account", "error", err)
		writeError(w, "Failed to register account", http.StatusInternalServerError)
		return
	}

	businessName := req.BusinessName
	if businessName == "" {
		businessName = req.Name
	}
	s.businesses.put(models.Business{ID: uuid.NewString(), Name: businessName, OwnerID: user.ID})

	s.logger.Info("Account registered, pending approval", "user_id", user.ID)
	writeData(w, http.StatusCreated, user)
}

// refresh answers with the bare {user, accessToken, refreshToken} object,
// not the data envelope the other endpoints use
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	g, err := s.tokens.Rotate(req.RefreshToken)
	if err != nil {
		writeError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, ok := s.users.get(g.UserID)
	if !ok {
		writeError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	accessToken, refreshToken, err := s.tokens.Reissue(user, g.SessionID)
	if err != nil {
		s.logger.Error("Failed to reissue tokens", "error", err)
		writeError(w, "Failed to refresh session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{User: &user, AccessToken: accessToken, RefreshToken: refreshToken})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.tokens.Revoke(claimsFrom(r).SessionID)
	writeJSON(w, http.StatusOK, ack{Success: true, Message: "Logged out"})
}

func (s *Server) approveUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, ok := s.users.get(id)
	if !ok {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}

	s.accountsMu.Lock()
	if acct, ok := s.accounts[user.Email]; ok {
		acct.approved = true
	}
	s.accountsMu.Unlock()

	for _, b := range s.businesses.page(1, maxPageSize, func(b models.Business) bool { return b.OwnerID == id }).Data {
		s.businesses.update(b.ID, func(b *models.Business) { b.Approved = true })
	}

	s.logger.Info("Account approved", "user_id", id, "by", claimsFrom(r).Subject)
	writeData(w, http.StatusOK, user)
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var keep func(models.Invoice) bool
	if claims.Role != models.RoleAdmin {
		keep = func(inv models.Invoice) bool { return inv.UserID == claims.Subject }
	}
	page, size := pageParams(r)
	writeData(w, http.StatusOK, s.invoices.page(page, size, keep))
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	inv, ok := s.invoices.get(chi.URLParam(r, "id"))
	if !ok || (claims.Role != models.RoleAdmin && inv.UserID != claims.Subject) {
		writeError(w, "Invoice not found", http.StatusNotFound)
		return
	}
	writeData(w, http.StatusOK, inv)
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, "Invoice must contain at least one item", http.StatusBadRequest)
		return
	}

	total, err := s.reserveStock(req.Items)
	if err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	inv := models.Invoice{
		ID:        uuid.NewString(),
		UserID:    claimsFrom(r).Subject,
		Items:     req.Items,
		Total:     total,
		Status:    "pending",
		CreatedAt: s.now().UTC(),
	}
	s.invoices.put(inv)

	s.logger.Info("Invoice created", "invoice_id", inv.ID, "user_id", inv.UserID, "total", inv.Total)
	writeData(w, http.StatusCreated, inv)
}

// reserveStock checks every line before decrementing any stock
func (s *Server) reserveStock(items []models.InvoiceItem) (float64, error) {
	s.products.mu.Lock()
	defer s.products.mu.Unlock()

	index := make(map[string]int, len(s.products.items))
	for i, p := range s.products.items {
		index[p.ID] = i
	}

	var total float64
	for _, item := range items {
		i, ok := index[item.ProductID]
		if !ok {
			return 0, fmt.Errorf("unknown product %s", item.ProductID)
		}
		if item.Quantity <= 0 {
			return 0, fmt.Errorf("invalid quantity %d for product %s", item.Quantity, item.ProductID)
		}
		if s.products.items[i].Stock < item.Quantity {
			return 0, fmt.Errorf("insufficient stock for product %s", item.ProductID)
		}
		total += s.products.items[i].Price * float64(item.Quantity)
	}
	for _, item := range items {
		s.products.items[index[item.ProductID]].Stock -= item.Quantity
	}
	return total, nil
}

const maxPageSize = 100

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func listHandler[T any](c *collection[T], keep func(T) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size := pageParams(r)
		writeData(w, http.StatusOK, c.page(page, size, keep))
	}
}

func getHandler[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := c.get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, "Not found", http.StatusNotFound)
			return
		}
		writeData(w, http.StatusOK, item)
	}
}

func createHandler[T any](c *collection[T], setID func(*T, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		setID(&item, uuid.NewString())
		c.put(item)
		writeData(w, http.StatusCreated, item)
	}
}

func updateHandler[T any](c *collection[T], setID func(*T, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := c.get(id); !ok {
			writeError(w, "Not found", http.StatusNotFound)
			return
		}
		var item T
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		setID(&item, id)
		c.put(item)
		writeData(w, http.StatusOK, item)
	}
}

func deleteHandler[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.delete(chi.URLParam(r, "id")) {
			writeError(w, "Not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
