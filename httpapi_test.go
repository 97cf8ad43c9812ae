package finkitty

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func post(t *testing.T, path, body string) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(path)
	req.SetBodyString(body)
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	NewHandler(DefaultTaxRules())(&ctx)
	return &ctx
}

func TestHandler_check(t *testing.T) {
	ctx := post(t, "/v1/check", sampleModelJSON)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, []string{CheckOKMessage}, resp.Messages)
}

func TestHandler_checkReportsIssues(t *testing.T) {
	body := `{"assets": [{"NAME": "stocks", "START": "never", "VALUE": "100"}]}`
	ctx := post(t, "/v1/check", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.False(t, resp.OK)
	require.NotEmpty(t, resp.Messages)
	assert.Contains(t, resp.Messages[0], `asset "stocks"`)
}

func TestHandler_evaluate(t *testing.T) {
	req := EvaluateRequest{
		Model: &Model{
			Assets: []Asset{{Name: "stocks", Start: "2020-01-01", Value: "100"}},
		},
		View: View{
			ROIStart: "2020-01-01", ROIEnd: "2020-12-31",
			Frequency: "annually", Detail: DetailFine,
		},
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	ctx := post(t, "/v1/evaluate", string(body))
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var report Report
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &report))
	require.Len(t, report.Assets, 2) // Cash plus stocks
	assert.Equal(t, "stocks", report.Assets[1].Name)
	assert.Equal(t, 100.0, report.Assets[1].DataPoints[0].Y)
}

func TestHandler_evaluateRejectsBrokenModel(t *testing.T) {
	req := EvaluateRequest{
		Model: &Model{
			Assets: []Asset{{Name: "stocks", Start: "never", Value: "100"}},
		},
		View: View{ROIStart: "2020-01-01", ROIEnd: "2020-12-31", Frequency: "annually"},
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	ctx := post(t, "/v1/evaluate", string(body))
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
}

func TestHandler_routing(t *testing.T) {
	ctx := post(t, "/v1/nope", "{}")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI("/v1/check")
	var get fasthttp.RequestCtx
	get.Init(&req, nil, nil)
	NewHandler(DefaultTaxRules())(&get)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, get.Response.StatusCode())

	bad := post(t, "/v1/evaluate", "not json")
	assert.Equal(t, fasthttp.StatusBadRequest, bad.Response.StatusCode())
}
