// Package handlers implements the three read-only operations spec.md §6.7
// exposes over HTTP: metric lookup, ad-hoc query, and partner results,
// plus the ledger CSV export — mirroring the teacher's thin
// handler-calls-service-returns-response shape.
package handlers

import (
	"net/http"

	"performa/api/http/response"
	"performa/api/http/store"
	"performa/internal/apperrors"
	"performa/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers wraps the DealStore every route handler reads from.
type Handlers struct {
	Store *store.DealStore
}

// New builds a Handlers bound to s.
func New(s *store.DealStore) *Handlers {
	return &Handlers{Store: s}
}

// analyzeRequest is the JSON body POST /deals runs through Analyze.
// Construct-then-validate (no builder DSL per spec.md's explicit
// Non-goal): the caller supplies a fully-populated Deal/Settings pair and
// internal/validate rejects a malformed one.
type analyzeRequest struct {
	Deal     model.Deal
	Settings model.Settings
}

// PostAnalyze serves POST /deals: validates and runs Analyze against the
// request body, registers the DealResults under the deal's ID, and
// returns that ID for subsequent GET lookups.
func (h *Handlers) PostAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "malformed request body: "+err.Error())
		return
	}
	if req.Deal.ID == uuid.Nil {
		response.Error(c, apperrors.New(apperrors.KindConfiguration, "deal.ID is required"))
		return
	}

	if _, err := h.Store.LoadDeal(req.Deal, req.Settings); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deal_id": req.Deal.ID.String()})
}

// GetMetric serves GET /deals/:deal_id/metrics/:name.
func (h *Handlers) GetMetric(c *gin.Context) {
	dealID := c.Param("deal_id")
	name := c.Param("name")

	results, ok := h.Store.Get(dealID)
	if !ok {
		response.BadRequest(c, "deal not found: "+dealID)
		return
	}

	value, err := h.Store.CachedJSON(c.Request.Context(), dealID, "metric", name, func() (interface{}, error) {
		return results.Metric(name)
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"name": name, "value": value})
}

// GetQuery serves GET /deals/:deal_id/query/:expr, exposing any canonical
// ledger aggregation by name.
func (h *Handlers) GetQuery(c *gin.Context) {
	dealID := c.Param("deal_id")
	expr := c.Param("expr")

	results, ok := h.Store.Get(dealID)
	if !ok {
		response.BadRequest(c, "deal not found: "+dealID)
		return
	}

	value, err := h.Store.CachedJSON(c.Request.Context(), dealID, "query", expr, func() (interface{}, error) {
		series, err := results.Queries.ByName(expr)
		if err != nil {
			return nil, err
		}
		return seriesPayload(series), nil
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, value)
}

// GetPartner serves GET /deals/:deal_id/partners/:partner_id.
func (h *Handlers) GetPartner(c *gin.Context) {
	dealID := c.Param("deal_id")
	partnerID := c.Param("partner_id")

	results, ok := h.Store.Get(dealID)
	if !ok {
		response.BadRequest(c, "deal not found: "+dealID)
		return
	}

	value, err := h.Store.CachedJSON(c.Request.Context(), dealID, "partner", partnerID, func() (interface{}, error) {
		partner, err := results.Partner(partnerID)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"partner_id":      partner.Partner.ID.String(),
			"name":            partner.Partner.Name,
			"irr":             partner.IRR,
			"equity_multiple": partner.EquityMultiple,
			"series":          seriesPayload(partner.Series),
		}, nil
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, value)
}

// GetExport serves GET /deals/:deal_id/export, streaming the ledger's CSV
// export (spec.md §6's "Ledger export format" column order). Not cached:
// it's a full-ledger dump rather than a scalar/series lookup, and it's
// only ever requested once per analysis run.
func (h *Handlers) GetExport(c *gin.Context) {
	dealID := c.Param("deal_id")
	results, ok := h.Store.Get(dealID)
	if !ok {
		response.BadRequest(c, "deal not found: "+dealID)
		return
	}

	csv := results.Queries.ExportCSV()
	c.Header("Content-Disposition", "attachment; filename=\""+dealID+"-ledger.csv\"")
	c.Data(http.StatusOK, "text/csv", []byte(csv))
}

// seriesPayload renders a CashFlowSeries as an array of {month, value}
// objects under "series",
// the JSON shape callers without access to model.CashFlowSeries can
// consume directly.
func seriesPayload(series *model.CashFlowSeries) gin.H {
	months := series.Timeline.Months()
	out := make([]gin.H, len(months))
	for i, ym := range months {
		out[i] = gin.H{"month": ym.String(), "value": series.Values[i]}
	}
	return gin.H{"series": out}
}
