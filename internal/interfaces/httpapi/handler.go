package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type Handler struct {
	auctionService    *usecase.AuctionService
	bidService        *usecase.BidService
	saleService       *usecase.SaleService
	allocationService *usecase.AllocationService
	budgetService     *usecase.BudgetService
	managerService    *usecase.ManagerService
	playerService     *usecase.PlayerService
	catalogService    *usecase.CatalogSyncService
	scoringService    *usecase.ScoringService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	auctionService *usecase.AuctionService,
	bidService *usecase.BidService,
	saleService *usecase.SaleService,
	allocationService *usecase.AllocationService,
	budgetService *usecase.BudgetService,
	managerService *usecase.ManagerService,
	playerService *usecase.PlayerService,
	catalogService *usecase.CatalogSyncService,
	scoringService *usecase.ScoringService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		auctionService:    auctionService,
		bidService:        bidService,
		saleService:       saleService,
		allocationService: allocationService,
		budgetService:     budgetService,
		managerService:    managerService,
		playerService:     playerService,
		catalogService:    catalogService,
		scoringService:    scoringService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, target)
}

// decodeOptionalRequest tolerates an empty body, leaving the target at its
// zero value.
func (h *Handler) decodeOptionalRequest(ctx context.Context, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, target)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type auctionDTO struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Phase        int     `json:"phase"`
	CurrentLotID *string `json:"currentLotId"`
	CreatedAtUTC string  `json:"createdAtUtc"`
}

type lotDTO struct {
	ID             string  `json:"id"`
	PlayerID       int64   `json:"playerId"`
	PlayerName     string  `json:"playerName"`
	Position       string  `json:"position"`
	ListPriceHalfM int64   `json:"listPriceHalfM"`
	Sold           bool    `json:"sold"`
	SoldPriceHalfM int64   `json:"soldPriceHalfM"`
	WinnerID       *string `json:"winnerId"`
}

type bidDTO struct {
	ID           string `json:"id"`
	LotID        string `json:"lotId"`
	ManagerID    string `json:"managerId"`
	AmountHalfM  int64  `json:"amountHalfM"`
	CreatedAtUTC string `json:"createdAtUtc"`
}

type currentLotDTO struct {
	lotDTO
	Bids []bidDTO `json:"bids"`
}

type auctionViewDTO struct {
	Auction      *auctionDTO    `json:"auction"`
	Lots         []lotDTO       `json:"lots"`
	CurrentLot   *currentLotDTO `json:"currentLot"`
	CurrentIndex int            `json:"currentIndex"`
	LotCount     int            `json:"lotCount"`
	SoldCount    int            `json:"soldCount"`
}

type saleResultDTO struct {
	Lot       lotDTO  `json:"lot"`
	NextLotID *string `json:"nextLotId"`
}

type budgetDTO struct {
	StartingHalfM  int64 `json:"startingHalfM"`
	SpentHalfM     int64 `json:"spentHalfM"`
	RemainingHalfM int64 `json:"remainingHalfM"`
}

type managerDTO struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	Admin        bool   `json:"admin"`
	CreatedAtUTC string `json:"createdAtUtc"`
}

type managerOverviewDTO struct {
	managerDTO
	Budget          budgetDTO `json:"budget"`
	SquadSize       int       `json:"squadSize"`
	SquadValueHalfM int64     `json:"squadValueHalfM"`
}

type playerDTO struct {
	ID             int64  `json:"id"`
	TeamID         int64  `json:"teamId"`
	FirstName      string `json:"firstName"`
	SecondName     string `json:"secondName"`
	WebName        string `json:"webName"`
	DisplayName    string `json:"displayName"`
	Position       string `json:"position"`
	ListPriceHalfM int64  `json:"listPriceHalfM"`
}

type teamDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type squadDTO struct {
	ID          string `json:"id"`
	ManagerID   string `json:"managerId"`
	Phase       int    `json:"phase"`
	TotalPoints int64  `json:"totalPoints"`
}

func auctionToDTO(a auction.Auction) auctionDTO {
	return auctionDTO{
		ID:           a.ID,
		Status:       string(a.Status),
		Phase:        a.Phase,
		CurrentLotID: a.CurrentLotID,
		CreatedAtUTC: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func lotToDTO(lot auction.Lot, p player.Player) lotDTO {
	return lotDTO{
		ID:             lot.ID,
		PlayerID:       lot.PlayerID,
		PlayerName:     p.DisplayName(),
		Position:       string(p.Position),
		ListPriceHalfM: p.ListPriceHalfM,
		Sold:           lot.Sold,
		SoldPriceHalfM: lot.SoldPriceHalfM,
		WinnerID:       lot.WinnerID,
	}
}

func bidToDTO(b auction.Bid) bidDTO {
	return bidDTO{
		ID:           b.ID,
		LotID:        b.LotID,
		ManagerID:    b.ManagerID,
		AmountHalfM:  b.AmountHalfM,
		CreatedAtUTC: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func budgetToDTO(b budget.Breakdown) budgetDTO {
	return budgetDTO{
		StartingHalfM:  b.StartingHalfM,
		SpentHalfM:     b.SpentHalfM,
		RemainingHalfM: b.RemainingHalfM,
	}
}

func managerToDTO(m manager.Manager) managerDTO {
	return managerDTO{
		ID:           m.ID,
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		Admin:        m.Admin,
		CreatedAtUTC: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:             p.ID,
		TeamID:         p.TeamID,
		FirstName:      p.FirstName,
		SecondName:     p.SecondName,
		WebName:        p.WebName,
		DisplayName:    p.DisplayName(),
		Position:       string(p.Position),
		ListPriceHalfM: p.ListPriceHalfM,
	}
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:        t.ID,
		Name:      t.Name,
		ShortName: t.ShortName,
	}
}

func squadToDTO(s roster.Squad) squadDTO {
	return squadDTO{
		ID:          s.ID,
		ManagerID:   s.ManagerID,
		Phase:       s.Phase,
		TotalPoints: s.TotalPoints,
	}
}
