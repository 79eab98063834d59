package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// Public routes back the read-only auction room screen: any visitor can
// watch the auction, browse the catalog and see the manager roll.
func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/auction/current", handler.GetCurrentAuction)
	mux.HandleFunc("GET /v1/auction/lots/{lotID}/bids", handler.ListLotBids)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/managers", handler.ListManagers)
	mux.HandleFunc("GET /v1/managers/{managerID}", handler.GetManager)
	mux.HandleFunc("POST /v1/managers", handler.RegisterManager)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/my/budget", RequireAuth(verifier, http.HandlerFunc(handler.GetMyBudget)))
	mux.Handle("POST /v1/auction/lots/{lotID}/bids", RequireAuth(verifier, http.HandlerFunc(handler.PlaceBid)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/admin/auction/start", RequireAdmin(verifier, http.HandlerFunc(handler.StartAuction)))
	mux.Handle("POST /v1/admin/auction/end", RequireAdmin(verifier, http.HandlerFunc(handler.EndAuction)))
	mux.Handle("POST /v1/admin/auction/clear", RequireAdmin(verifier, http.HandlerFunc(handler.ClearAuction)))
	mux.Handle("POST /v1/admin/auction/lots/{lotID}/bids", RequireAdmin(verifier, http.HandlerFunc(handler.PlaceBidOnBehalf)))
	mux.Handle("POST /v1/admin/auction/lots/{lotID}/sell", RequireAdmin(verifier, http.HandlerFunc(handler.SellLot)))
	mux.Handle("POST /v1/admin/auction/lots/{lotID}/unsold", RequireAdmin(verifier, http.HandlerFunc(handler.MarkLotUnsold)))
	mux.Handle("POST /v1/admin/auction/lots/{lotID}/reopen", RequireAdmin(verifier, http.HandlerFunc(handler.ReopenLot)))
	mux.Handle("POST /v1/admin/auction/lots/{lotID}/skip", RequireAdmin(verifier, http.HandlerFunc(handler.SkipToLot)))
	mux.Handle("POST /v1/admin/allocations/bulk", RequireAdmin(verifier, http.HandlerFunc(handler.BulkAllocate)))
	mux.Handle("GET /v1/admin/managers/{managerID}/budget", RequireAdmin(verifier, http.HandlerFunc(handler.GetManagerBudget)))
	mux.Handle("PUT /v1/admin/managers/{managerID}/budget", RequireAdmin(verifier, http.HandlerFunc(handler.SetManagerBudget)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/catalog-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCatalogSync)))
	mux.Handle("POST /v1/internal/jobs/points-refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPointsRefresh)))
}
