// Package api holds the HTTP contract of the wagering service: request and response bodies,
// the ServerInterface the handlers implement, and the chi wiring that binds path and query
// parameters before calling it. openapi.yaml documents the same surface.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Get the caller's account
	// (GET /aura/balance)
	GetBalance(w http.ResponseWriter, r *http.Request)
	// Claim today's bonus
	// (POST /aura/daily-bonus)
	ClaimDailyBonus(w http.ResponseWriter, r *http.Request)
	// List the caller's transactions
	// (GET /aura/transactions)
	ListTransactions(w http.ResponseWriter, r *http.Request, params ListTransactionsParams)
	// Expire every overdue bet
	// (POST /bets/auto-expire)
	AutoExpireBets(w http.ResponseWriter, r *http.Request)
	// List a chat's bets
	// (GET /bets/chat/{chatId})
	ListChatBets(w http.ResponseWriter, r *http.Request, chatId string, params ListChatBetsParams)
	// Create a bet
	// (POST /bets/create)
	CreateBet(w http.ResponseWriter, r *http.Request)
	// Delete a proof
	// (DELETE /bets/proofs/{proofId})
	DeleteProof(w http.ResponseWriter, r *http.Request, proofId string)
	// Get a bet with participants, totals and the caller's stake
	// (GET /bets/{betId})
	GetBet(w http.ResponseWriter, r *http.Request, betId string)
	// Get the caller's stake
	// (GET /bets/{betId}/my-stake)
	GetMyStake(w http.ResponseWriter, r *http.Request, betId string)
	// List participants and totals
	// (GET /bets/{betId}/participants)
	GetParticipants(w http.ResponseWriter, r *http.Request, betId string)
	// Submit proof
	// (POST /bets/{betId}/proof)
	SubmitProof(w http.ResponseWriter, r *http.Request, betId string)
	// List proofs
	// (GET /bets/{betId}/proofs)
	ListProofs(w http.ResponseWriter, r *http.Request, betId string)
	// Resolve a bet
	// (POST /bets/{betId}/resolve)
	ResolveBet(w http.ResponseWriter, r *http.Request, betId string)
	// Get a bet's resolution
	// (GET /bets/{betId}/resolution)
	GetResolution(w http.ResponseWriter, r *http.Request, betId string)
	// Place a stake
	// (POST /bets/{betId}/stake)
	PlaceStake(w http.ResponseWriter, r *http.Request, betId string)
	// Get a user's reputation
	// (GET /users/{userId}/reputation)
	GetReputation(w http.ResponseWriter, r *http.Request, userId string)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return value, true
}

// GetBalance operation middleware
func (siw *ServerInterfaceWrapper) GetBalance(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetBalance)
}

// ClaimDailyBonus operation middleware
func (siw *ServerInterfaceWrapper) ClaimDailyBonus(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ClaimDailyBonus)
}

// ListTransactions operation middleware
func (siw *ServerInterfaceWrapper) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var params ListTransactionsParams

	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListTransactions(w, r, params)
	})
}

// AutoExpireBets operation middleware
func (siw *ServerInterfaceWrapper) AutoExpireBets(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.AutoExpireBets)
}

// ListChatBets operation middleware
func (siw *ServerInterfaceWrapper) ListChatBets(w http.ResponseWriter, r *http.Request) {
	chatId, ok := siw.pathParam(w, r, "chatId")
	if !ok {
		return
	}

	var params ListChatBetsParams

	if err := runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &params.Status); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}

	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListChatBets(w, r, chatId, params)
	})
}

// CreateBet operation middleware
func (siw *ServerInterfaceWrapper) CreateBet(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateBet)
}

// DeleteProof operation middleware
func (siw *ServerInterfaceWrapper) DeleteProof(w http.ResponseWriter, r *http.Request) {
	proofId, ok := siw.pathParam(w, r, "proofId")
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteProof(w, r, proofId)
	})
}

// betOperation binds betId and calls op.
func (siw *ServerInterfaceWrapper) betOperation(op func(w http.ResponseWriter, r *http.Request, betId string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		betId, ok := siw.pathParam(w, r, "betId")
		if !ok {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			op(w, r, betId)
		})
	}
}

// GetReputation operation middleware
func (siw *ServerInterfaceWrapper) GetReputation(w http.ResponseWriter, r *http.Request) {
	userId, ok := siw.pathParam(w, r, "userId")
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetReputation(w, r, userId)
	})
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching openapi.yaml.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching openapi.yaml based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/aura/balance", wrapper.GetBalance)
		r.Post(options.BaseURL+"/aura/daily-bonus", wrapper.ClaimDailyBonus)
		r.Get(options.BaseURL+"/aura/transactions", wrapper.ListTransactions)
		r.Post(options.BaseURL+"/bets/auto-expire", wrapper.AutoExpireBets)
		r.Get(options.BaseURL+"/bets/chat/{chatId}", wrapper.ListChatBets)
		r.Post(options.BaseURL+"/bets/create", wrapper.CreateBet)
		r.Delete(options.BaseURL+"/bets/proofs/{proofId}", wrapper.DeleteProof)
		r.Get(options.BaseURL+"/bets/{betId}", wrapper.betOperation(si.GetBet))
		r.Get(options.BaseURL+"/bets/{betId}/my-stake", wrapper.betOperation(si.GetMyStake))
		r.Get(options.BaseURL+"/bets/{betId}/participants", wrapper.betOperation(si.GetParticipants))
		r.Post(options.BaseURL+"/bets/{betId}/proof", wrapper.betOperation(si.SubmitProof))
		r.Get(options.BaseURL+"/bets/{betId}/proofs", wrapper.betOperation(si.ListProofs))
		r.Post(options.BaseURL+"/bets/{betId}/resolve", wrapper.betOperation(si.ResolveBet))
		r.Get(options.BaseURL+"/bets/{betId}/resolution", wrapper.betOperation(si.GetResolution))
		r.Post(options.BaseURL+"/bets/{betId}/stake", wrapper.betOperation(si.PlaceStake))
		r.Get(options.BaseURL+"/users/{userId}/reputation", wrapper.GetReputation)
	})

	return r
}
