// Package controllers contains the HTTP handlers for the marketplace API.
// Handlers decode and validate payloads, call into the service layer and
// write the shared response envelope.
package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paolomureddu/agrikmzero-backend/api/middleware"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

// requireUserID extracts the authenticated user's id from the request context.
func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// requireFarmerID is requireUserID restricted to farmer accounts.
func requireFarmerID(r *http.Request) (uuid.UUID, error) {
	id, err := requireUserID(r)
	if err != nil {
		return uuid.Nil, err
	}
	if !middleware.IsFarmerFromContext(r.Context()) {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "farmer account required")
	}
	return id, nil
}

// optionalUserID returns the authenticated user's id, or nil for guests.
func optionalUserID(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// requireCartSession extracts the visitor's cart session id from the context.
func requireCartSession(r *http.Request) (string, error) {
	sessionID := middleware.CartSessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return sessionID, nil
}

// uuidParam parses a chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
