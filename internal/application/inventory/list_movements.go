package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// ListMovementsUseCase consulta paginada y filtrada del libro (solo lectura, por empresa).
type ListMovementsUseCase struct {
	movRepo repository.MovementRepository
}

// NewListMovementsUseCase construye el caso de uso.
func NewListMovementsUseCase(movRepo repository.MovementRepository) *ListMovementsUseCase {
	return &ListMovementsUseCase{movRepo: movRepo}
}

// List devuelve los movimientos de la empresa del actor, más recientes primero por defecto.
func (uc *ListMovementsUseCase) List(ctx context.Context, actor tenant.Actor, req dto.ListMovementsRequest) (*dto.MovementPageDTO, error) {
	businessID, err := tenant.ResolveBusiness(actor)
	if err != nil {
		return nil, err
	}
	filter, err := buildMovementFilter(req)
	if err != nil {
		return nil, err
	}
	page := req.PageRequest
	page.DefaultPage()

	rows, total, err := uc.movRepo.List(ctx, businessID, filter, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MovementDTO{
			ID:           r.ID,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			SKU:          r.SKU,
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			UserID:       r.UserID,
			Type:         string(r.Type),
			Quantity:     r.Quantity,
			Delta:        r.Delta(),
			StockAfter:   r.StockAfter,
			Reason:       r.Reason,
			Timestamp:    r.CreatedAt,
		})
	}
	return &dto.MovementPageDTO{Rows: out, Pagination: dto.NewPageResponse(page, total)}, nil
}

func buildMovementFilter(req dto.ListMovementsRequest) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		ProductID:  strings.TrimSpace(req.ProductID),
		CategoryID: strings.TrimSpace(req.CategoryID),
		Search:     strings.TrimSpace(req.Search),
	}
	if req.Type != "" {
		mt, ok := entity.ParseMovementType(req.Type)
		if !ok {
			return f, domain.ErrInvalidMovementType
		}
		f.Type = mt
	}
	switch strings.ToLower(strings.TrimSpace(req.Order)) {
	case "", "desc":
	case "asc":
		f.Ascending = true
	default:
		return f, domain.ErrInvalidInput
	}
	if req.DateFrom != "" {
		from, _, err := parseDate(req.DateFrom)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if req.DateTo != "" {
		to, dateOnly, err := parseDate(req.DateTo)
		if err != nil {
			return f, err
		}
		// Una fecha sin hora incluye el día completo.
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		} else {
			to = to.Add(time.Nanosecond)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, domain.ErrInvalidInput
	}
	return f, nil
}

// parseDate acepta YYYY-MM-DD (UTC) o RFC3339.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, domain.ErrInvalidInput
	}
	return t, false, nil
}
