package httpapi

import (
	"net/http"

	"github.com/Devansh171021/swpl/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerAuctionRoutes(mux, handler)
	registerHistoryRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuctionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auction/start", handler.StartAuction)
	mux.HandleFunc("GET /v1/auction", handler.GetAuctionState)
	mux.HandleFunc("POST /v1/auction/sell", handler.SellPlayer)
	mux.HandleFunc("POST /v1/auction/pass", handler.PassPlayer)
	mux.HandleFunc("POST /v1/auction/navigate", handler.NavigateAuction)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamName}", handler.GetTeamSummary)
}

func registerHistoryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/history", handler.ListHistory)
	mux.HandleFunc("GET /v1/history/export", handler.ExportHistory)
	mux.HandleFunc("DELETE /v1/history", handler.ClearHistory)
	mux.HandleFunc("POST /v1/history/resync", handler.ResyncHistory)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
