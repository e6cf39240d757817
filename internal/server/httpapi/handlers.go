package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/server/services"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "realmportal"})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type registerResponse struct {
	Success   bool   `json:"success"`
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrInvalidRequest)
		return
	}

	info, err := s.accounts.Create(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Success:   true,
		AccountID: info.ID,
		Username:  info.Username,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success     bool   `json:"success"`
	AccountID   int64  `json:"account_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrInvalidRequest)
		return
	}

	info, token, err := s.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		AccountID:   info.ID,
		Username:    info.Username,
		AccessToken: token,
	})
}

type purchaseRequest struct {
	RealmID       int32 `json:"realm_id"`
	CharacterGUID int64 `json:"character_guid"`
	TemplateID    int64 `json:"template_id"`
	Quantity      int64 `json:"quantity"`
}

type purchaseResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	MailID     int64  `json:"mail_id"`
	ItemName   string `json:"item_name"`
	TotalCost  int64  `json:"total_cost"`
	NewBalance int64  `json:"new_balance"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrInvalidRequest)
		return
	}

	result, err := s.shop.Purchase(r.Context(), accountFromContext(r.Context()),
		req.RealmID, req.CharacterGUID, req.TemplateID, req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, purchaseResponse{
		Success:    true,
		Message:    "purchase delivered to your mailbox",
		MailID:     result.MailID,
		ItemName:   result.ItemName,
		TotalCost:  result.TotalCost,
		NewBalance: result.NewBalance,
	})
}

type sendMailRequest struct {
	RealmID       int32           `json:"realm_id"`
	CharacterGUID int64           `json:"character_guid"`
	Money         int64           `json:"money"`
	Items         []sendMailGrant `json:"items"`
	Subject       string          `json:"subject"`
	Body          string          `json:"body"`
}

type sendMailGrant struct {
	TemplateID int64 `json:"template_id"`
	Quantity   int64 `json:"quantity"`
}

type sendMailItem struct {
	ItemGUID   int64  `json:"item_guid"`
	TemplateID int64  `json:"template_id"`
	Name       string `json:"name"`
	Count      int32  `json:"count"`
}

type sendMailResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	MailID  int64          `json:"mail_id"`
	Items   []sendMailItem `json:"items"`
	Money   int64          `json:"money"`
}

func (s *Server) handleSendMail(w http.ResponseWriter, r *http.Request) {
	var req sendMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrInvalidRequest)
		return
	}

	delivery := &services.DeliveryRequest{
		ReceiverGUID:  req.CharacterGUID,
		MoneyToCredit: req.Money,
		Subject:       req.Subject,
		Body:          req.Body,
	}
	for _, g := range req.Items {
		delivery.Items = append(delivery.Items, services.ItemGrant{TemplateID: g.TemplateID, Quantity: g.Quantity})
	}

	summary, err := s.gmmail.SendDelivery(r.Context(), accountFromContext(r.Context()), req.RealmID, delivery)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]sendMailItem, len(summary.Stacks))
	for i, st := range summary.Stacks {
		items[i] = sendMailItem{ItemGUID: st.ItemGUID, TemplateID: st.TemplateID, Name: st.Name, Count: st.Count}
	}

	writeJSON(w, http.StatusOK, sendMailResponse{
		Success: true,
		Message: "delivery sent",
		MailID:  summary.MailID,
		Items:   items,
		Money:   summary.Money,
	})
}
