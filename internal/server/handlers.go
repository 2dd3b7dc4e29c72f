package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/checkout"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/returns"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type checkoutRequest struct {
	BuyerID       string               `json:"buyer_id"`
	CartID        string               `json:"cart_id"`
	Items         []domain.CartLine    `json:"items"`
	Address       domain.Address       `json:"address"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	ShippingFee   *int64               `json:"shipping_fee"`
	Discount      int64                `json:"discount"`
	LoyaltyUsed   int64                `json:"loyalty_used"`
	LoyaltyEarned int64                `json:"loyalty_earned"`
}

type checkoutResponse struct {
	BaseNumber   string         `json:"base_number"`
	OrderNumbers []string       `json:"order_numbers"`
	Orders       []domain.Order `json:"orders"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BuyerID == "" {
		respondError(w, http.StatusBadRequest, "buyer_id is required")
		return
	}
	switch req.PaymentMethod {
	case domain.PaymentCOD, domain.PaymentCard, domain.PaymentEWallet:
	default:
		respondError(w, http.StatusBadRequest, "Invalid payment method")
		return
	}

	shippingFee := s.shippingFee
	if req.ShippingFee != nil {
		shippingFee = *req.ShippingFee
	}

	res, err := s.checkout.Checkout(r.Context(), checkout.Request{
		BuyerID:       req.BuyerID,
		CartID:        req.CartID,
		Lines:         req.Items,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		ShippingFee:   shippingFee,
		Discount:      req.Discount,
		LoyaltyUsed:   req.LoyaltyUsed,
		LoyaltyEarned: req.LoyaltyEarned,
	})
	if err != nil {
		var f *checkout.Failure
		if errors.As(err, &f) {
			s.orders.Track(f.Orders...)
		}
		respondFailure(w, err)
		return
	}

	s.orders.Track(res.Orders...)
	respondJSON(w, http.StatusCreated, checkoutResponse{
		BaseNumber:   res.BaseNumber,
		OrderNumbers: res.OrderNumbers(),
		Orders:       res.Orders,
	})
}

func refreshRequested(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && v
}

func (s *Server) handleBuyerOrders(w http.ResponseWriter, r *http.Request) {
	buyerID := mux.Vars(r)["id"]
	if refreshRequested(r) {
		if err := s.orders.RefreshBuyer(r.Context(), buyerID); err != nil {
			respondFailure(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, s.orders.BuyerOrders(buyerID))
}

func (s *Server) handleSellerOrders(w http.ResponseWriter, r *http.Request) {
	sellerID := mux.Vars(r)["id"]
	if refreshRequested(r) {
		if err := s.orders.RefreshSeller(r.Context(), sellerID); err != nil {
			respondFailure(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, s.orders.SellerOrders(sellerID))
}

func (s *Server) handleSellerStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status         string `json:"status"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	target, err := status.ParseSeller(req.Status)
	if err != nil {
		respondFailure(w, err)
		return
	}

	order, err := s.orders.UpdateSellerStatus(r.Context(), mux.Vars(r)["id"], target, req.TrackingNumber)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleReceived(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.ConfirmReceived(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleCreateReturn(w http.ResponseWriter, r *http.Request) {
	var req returns.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OrderID == "" || req.BuyerID == "" {
		respondError(w, http.StatusBadRequest, "order_id and buyer_id are required")
		return
	}

	ret, err := s.returns.Create(r.Context(), req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ret)
}

func (s *Server) handleGetReturn(w http.ResponseWriter, r *http.Request) {
	ret, err := s.returns.Get(mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ret)
}

func (s *Server) handleReturnStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.ReturnStatus `json:"status"`
		Actor  domain.Role         `json:"actor"`
		Note   string              `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ret, err := s.returns.Transition(r.Context(), mux.Vars(r)["id"], req.Status, req.Actor, req.Note)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ret)
}

func (s *Server) handleBuyerReturns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.returns.ForBuyer(mux.Vars(r)["id"]))
}

func (s *Server) handleSellerReturns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.returns.ForSeller(mux.Vars(r)["id"]))
}
