package controllers

import (
	"net/http"

	"github.com/paolomureddu/agrikmzero-backend/api/responses"
)

// PublicPing answers unauthenticated reachability checks.
func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}

// PrivatePing answers authenticated reachability checks.
func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}
