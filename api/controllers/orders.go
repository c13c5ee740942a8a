package controllers

import (
	"net/http"
	"strings"

	"github.com/paolomureddu/agrikmzero-backend/api/middleware"
	"github.com/paolomureddu/agrikmzero-backend/api/responses"
	"github.com/paolomureddu/agrikmzero-backend/api/validators"
	ordersvc "github.com/paolomureddu/agrikmzero-backend/internal/orders"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// OrderCreate submits one seller's cart group as an order request. Guests
// supply their contact details in the payload; logged-in buyers have them
// backfilled from the account.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireCartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := uuidParam(r, "sellerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ordersvc.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), ordersvc.CreateOrderInput{
			SessionID:       sessionID,
			SellerID:        sellerID,
			BuyerID:         optionalUserID(r),
			BuyerName:       payload.BuyerName,
			BuyerEmail:      payload.BuyerEmail,
			BuyerPhone:      payload.BuyerPhone,
			Delivery:        payload.Delivery,
			DeliveryAddress: payload.DeliveryAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList serves both sides of the marketplace. Farmers get their incoming
// requests (optionally filtered by ?status=); everyone can ask for the orders
// they placed with ?view=sent.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := strings.TrimSpace(r.URL.Query().Get("view"))
		if view == "" {
			if middleware.IsFarmerFromContext(r.Context()) {
				view = "received"
			} else {
				view = "sent"
			}
		}

		switch view {
		case "received":
			if !middleware.IsFarmerFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "farmer account required"))
				return
			}

			var status *enums.OrderStatus
			if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
				parsed, err := enums.ParseOrderStatus(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
					return
				}
				status = &parsed
			}

			items, err := svc.ListForSeller(r.Context(), userID, status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, items)
		case "sent":
			items, err := svc.ListForBuyer(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, items)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid view"))
		}
	}
}

// OrderDetail returns one order visible to its seller or buyer.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderDecision applies a fixed accept or reject decision to one order.
func OrderDecision(svc ordersvc.Service, action enums.OrderAction, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := requireFarmerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Transition(r.Context(), sellerID, orderID, action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderBulkTransition applies one decision to many pending orders at once.
func OrderBulkTransition(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := requireFarmerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ordersvc.BulkTransitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseOrderAction(payload.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order action"))
			return
		}

		result, err := svc.BulkTransition(r.Context(), sellerID, payload.OrderIDs, action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// OrderComplete marks an accepted order as fulfilled.
func OrderComplete(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := requireFarmerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Complete(r.Context(), sellerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderReply sends a free-text note from the farmer to the buyer.
func OrderReply(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := requireFarmerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ordersvc.ReplyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reply(r.Context(), sellerID, orderID, payload.Message); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}
