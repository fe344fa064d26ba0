package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	icache "GridCast/internal/service/cache"
	"GridCast/internal/service/metrics"
	"GridCast/internal/service/ratelimit"
	"GridCast/internal/usecase"
	xhttp "GridCast/pkg/http"
	applogger "GridCast/pkg/logger"
)

// ForecastHandler serves the read-only forecast endpoints over plain net/http.
// Responses are cached briefly and rate limited per remote.
type ForecastHandler struct {
	models  *usecase.ModelUseCase
	savings *usecase.SavingsUseCase
	cache   icache.BytesCache
	rl      *ratelimit.Limiter
	l       *applogger.Logger
}

func NewForecastHandler(models *usecase.ModelUseCase, savings *usecase.SavingsUseCase) *ForecastHandler {
	metrics.Register()
	return &ForecastHandler{models: models, savings: savings, rl: ratelimit.New()}
}

func (h *ForecastHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *ForecastHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *ForecastHandler) ImprovedForecasts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "improved_forecasts"
		defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		market := r.URL.Query().Get("market")
		if market == "" {
			if h.l != nil {
				h.l.Warn("forecast.improved missing market")
			}
			http.Error(w, "market required", http.StatusBadRequest)
			return
		}
		version := r.URL.Query().Get("version")
		from, to, perr := parseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":improved", 5, 2) {
			if h.l != nil {
				h.l.Warn("forecast.improved rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		limit := xhttp.ParseIntDefault(r.URL.Query().Get("limit"), 0)
		cacheKey := "improved:" + market + ":" + version + ":" + from.Format(time.RFC3339) + ":" + to.Format(time.RFC3339) + ":" + strconv.Itoa(limit)
		if h.serveCached(w, endpoint, cacheKey) {
			return
		}
		res, err := h.models.GetImprovedForecasts(r.Context(), market, version, from, to)
		if err != nil {
			metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("forecast.improved error", applogger.Error(err))
			}
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		if limit > 0 && len(res) > limit {
			res = res[:limit]
		}
		h.writeJSON(w, endpoint, cacheKey, res, 30*time.Second)
	}
}

func (h *ForecastHandler) Savings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "savings"
		defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		siteID := r.URL.Query().Get("site_id")
		market := r.URL.Query().Get("market")
		if siteID == "" || market == "" {
			if h.l != nil {
				h.l.Warn("forecast.savings missing site_id or market")
			}
			http.Error(w, "site_id and market required", http.StatusBadRequest)
			return
		}
		from, to, perr := parseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":savings", 3, 1) {
			if h.l != nil {
				h.l.Warn("forecast.savings rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		// savings are computed fresh on every call, never cached
		res, err := h.savings.CalculateSavings(r.Context(), usecase.SavingsParams{
			SiteID: siteID,
			Market: market,
			Start:  from,
			End:    to,
		})
		if err != nil {
			metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("forecast.savings error", applogger.Error(err))
			}
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		h.writeJSON(w, endpoint, "", res, 0)
	}
}

func (h *ForecastHandler) Accuracy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "accuracy"
		defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		market := r.URL.Query().Get("market")
		if market == "" {
			if h.l != nil {
				h.l.Warn("forecast.accuracy missing market")
			}
			http.Error(w, "market required", http.StatusBadRequest)
			return
		}
		from, to, perr := parseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":accuracy", 5, 2) {
			if h.l != nil {
				h.l.Warn("forecast.accuracy rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "accuracy:" + market + ":" + from.Format(time.RFC3339) + ":" + to.Format(time.RFC3339)
		if h.serveCached(w, endpoint, cacheKey) {
			return
		}
		res, err := h.savings.CalculateForecastAccuracy(r.Context(), market, from, to)
		if err != nil {
			metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("forecast.accuracy error", applogger.Error(err))
			}
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		h.writeJSON(w, endpoint, cacheKey, res, 60*time.Second)
	}
}

func (h *ForecastHandler) serveCached(w http.ResponseWriter, endpoint, key string) bool {
	if h.cache == nil {
		return false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.l != nil {
			h.l.Warn("forecast cache_get_error", applogger.String("endpoint", endpoint), applogger.Error(err))
		}
		return false
	}
	if !ok {
		if h.l != nil {
			h.l.Debug("forecast cache_miss", applogger.String("key", key))
		}
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	if h.l != nil {
		h.l.Debug("forecast cache_hit", applogger.String("key", key))
	}
	if _, err := w.Write(b); err != nil && h.l != nil {
		h.l.Warn("forecast write_error", applogger.Error(err))
	}
	return true
}

func (h *ForecastHandler) writeJSON(w http.ResponseWriter, endpoint, key string, v interface{}, ttl time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.Marshal(v)
	if err != nil {
		if h.l != nil {
			h.l.Error("forecast marshal_error", applogger.String("endpoint", endpoint), applogger.Error(err))
		}
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	if h.cache != nil && key != "" {
		if err := h.cache.SetBytes(key, b, ttl); err != nil && h.l != nil {
			h.l.Warn("forecast cache_set_error", applogger.Error(err))
		}
	}
	if _, err := w.Write(b); err != nil && h.l != nil {
		h.l.Warn("forecast write_error", applogger.Error(err))
	}
}
