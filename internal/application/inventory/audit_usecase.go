package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const defaultAuditConcurrency = 4

// AuditUseCase verifica la invariante stock == Σ deltas reproduciendo el libro.
// Una discrepancia nunca debería ocurrir; si ocurre se registra como error.
type AuditUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	log         zerolog.Logger
	concurrency int
}

// NewAuditUseCase construye el caso de uso. concurrency <= 0 usa el valor por defecto.
func NewAuditUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	log zerolog.Logger,
	concurrency int,
) *AuditUseCase {
	if concurrency <= 0 {
		concurrency = defaultAuditConcurrency
	}
	return &AuditUseCase{
		productRepo: productRepo,
		movRepo:     movRepo,
		log:         log.With().Str("component", "ledger_audit").Logger(),
		concurrency: concurrency,
	}
}

// VerifyProduct compara el stock guardado del producto con la reproducción de su libro.
func (uc *AuditUseCase) VerifyProduct(ctx context.Context, actor tenant.Actor, productID string) (*dto.ConsistencyReportDTO, error) {
	businessID, err := tenant.ResolveBusiness(actor)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, businessID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !tenant.Owns(businessID, product.BusinessID) {
		return nil, domain.ErrProductNotFound
	}
	return uc.verify(ctx, businessID, product)
}

// VerifyAll reproduce el libro de todos los productos de la empresa con concurrencia acotada
// y devuelve solo los inconsistentes.
func (uc *AuditUseCase) VerifyAll(ctx context.Context, actor tenant.Actor) (*dto.AuditSummaryDTO, error) {
	businessID, err := tenant.ResolveBusiness(actor)
	if err != nil {
		return nil, err
	}
	products, err := uc.productRepo.ListStock(ctx, businessID, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}

	var (
		mu           sync.Mutex
		inconsistent = []dto.ConsistencyReportDTO{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for _, p := range products {
		g.Go(func() error {
			report, err := uc.verify(gctx, businessID, p)
			if err != nil {
				return err
			}
			if !report.Consistent {
				mu.Lock()
				inconsistent = append(inconsistent, *report)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.AuditSummaryDTO{CheckedProducts: len(products), Inconsistent: inconsistent}, nil
}

// StockAt reconstruye el stock del producto en un instante reproduciendo el libro hasta at.
// No está optimizado: recorre todos los movimientos anteriores.
func (uc *AuditUseCase) StockAt(ctx context.Context, actor tenant.Actor, productID string, at time.Time) (*dto.StockAtDTO, error) {
	businessID, err := tenant.ResolveBusiness(actor)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, businessID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !tenant.Owns(businessID, product.BusinessID) {
		return nil, domain.ErrProductNotFound
	}
	movs, err := uc.movRepo.ListByProduct(ctx, businessID, productID, &at)
	if err != nil {
		return nil, err
	}
	stock, _ := inventory.Replay(movs)
	return &dto.StockAtDTO{ProductID: productID, At: at, Stock: stock, MovementCount: len(movs)}, nil
}

func (uc *AuditUseCase) verify(ctx context.Context, businessID string, product *entity.Product) (*dto.ConsistencyReportDTO, error) {
	movs, err := uc.movRepo.ListByProduct(ctx, businessID, product.ID, nil)
	if err != nil {
		return nil, err
	}
	ledgerStock, minBalance := inventory.Replay(movs)
	report := &dto.ConsistencyReportDTO{
		ProductID:     product.ID,
		StoredStock:   product.Stock,
		LedgerStock:   ledgerStock,
		MovementCount: len(movs),
		Consistent:    ledgerStock == product.Stock && minBalance >= 0,
	}
	if !report.Consistent {
		uc.log.Error().
			Err(domain.ErrLedgerMismatch).
			Str("business_id", businessID).
			Str("product_id", product.ID).
			Int("stored_stock", product.Stock).
			Int("ledger_stock", ledgerStock).
			Int("min_balance", minBalance).
			Msg("invariante del libro violada")
	}
	return report, nil
}
