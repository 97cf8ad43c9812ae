package finkitty

import (
	"log"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// EvaluateRequest is the body of POST /v1/evaluate: a full model plus the
// view to aggregate it under.
type EvaluateRequest struct {
	Model *Model `json:"model"`
	View  View   `json:"view"`
}

// CheckResponse is the body returned by POST /v1/check.
type CheckResponse struct {
	OK       bool     `json:"ok"`
	Messages []string `json:"messages"`
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewHandler returns the engine's HTTP surface. Every endpoint is a pure
// function of its request body; there is no server-side model state.
func NewHandler(rules TaxRules) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "POST only")
			return
		}
		switch string(ctx.Path()) {
		case "/v1/evaluate":
			handleEvaluate(ctx, rules)
		case "/v1/check":
			handleCheck(ctx)
		default:
			writeError(ctx, fasthttp.StatusNotFound, "no such endpoint")
		}
	}
}

// ListenAndServe runs the evaluation service until the listener fails.
func ListenAndServe(addr string, rules TaxRules) error {
	log.Printf("evaluation service listening on %s", addr)
	return fasthttp.ListenAndServe(addr, NewHandler(rules))
}

func handleEvaluate(ctx *fasthttp.RequestCtx, rules TaxRules) {
	var req EvaluateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Model == nil {
		writeError(ctx, fasthttp.StatusBadRequest, "model is required")
		return
	}
	if issues := CheckModel(req.Model); len(issues) > 0 {
		writeError(ctx, fasthttp.StatusUnprocessableEntity, issues[0].Message())
		return
	}
	report, err := Evaluate(req.Model, req.View, rules)
	if err != nil {
		writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, report)
}

func handleCheck(ctx *fasthttp.RequestCtx) {
	model, err := DecodeModel(ctx.PostBody())
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	issues := CheckModel(model)
	resp := CheckResponse{OK: len(issues) == 0}
	if len(issues) == 0 {
		resp.Messages = []string{CheckOKMessage}
	}
	for _, issue := range issues {
		resp.Messages = append(resp.Messages, issue.Message())
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, errorResponse{Status: status, Message: message})
}
