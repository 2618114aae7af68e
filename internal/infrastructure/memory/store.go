// Package memory implementa los puertos del libro en memoria. Se usa en pruebas y en modo demo
// (sin DATABASE_URL). Las transacciones se serializan con un mutex y las escrituras se
// acumulan hasta que la función termina sin error.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/catalog"
)

// Operaciones en las que se puede inyectar un fallo.
const (
	OpGetForUpdate   = "get_for_update"
	OpSetStock       = "set_stock"
	OpInsertMovement = "insert_movement"
)

// SystemUser usuario del movimiento de apertura que siembra AddProduct.
const SystemUser = "system"

// Store catálogo + libro en memoria.
type Store struct {
	mu         sync.Mutex
	products   map[string]*entity.Product
	categories map[string]entity.Category
	movements  []*entity.Movement
	faults     map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]entity.Category),
		faults:     make(map[string]error),
	}
}

// AddCategory registra una categoría.
func (s *Store) AddCategory(c entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// AddProduct registra un producto. Si trae stock inicial se siembra un movimiento ADD de apertura
// para que el libro reproduzca el mismo saldo. Un id repetido devuelve ErrConflict sin tocar nada.
func (s *Store) AddProduct(p entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return fmt.Errorf("producto %s: %w", p.ID, domain.ErrConflict)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	cp := p
	s.products[p.ID] = &cp
	if p.Stock > 0 {
		s.movements = append(s.movements, &entity.Movement{
			ID:         catalog.OpeningMovementID(p.ID),
			BusinessID: p.BusinessID,
			ProductID:  p.ID,
			UserID:     SystemUser,
			Type:       entity.MovementAdd,
			Quantity:   p.Stock,
			StockAfter: p.Stock,
			Reason:     "saldo inicial",
			CreatedAt:  p.UpdatedAt.Add(-time.Millisecond),
		})
	}
	return nil
}

// ForceStock sobrescribe el stock sin pasar por el libro. Solo para simular corrupción en pruebas.
func (s *Store) ForceStock(productID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[productID]; ok {
		p.Stock = stock
	}
}

// FailOn hace que la operación op falle con err dentro de la siguiente transacción que la ejecute.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// Movements copia del libro completo en orden de escritura.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, 0, len(s.movements))
	for _, m := range s.movements {
		out = append(out, *m)
	}
	return out
}

// Run ejecuta fn como una transacción: o se aplican todas sus escrituras o ninguna.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Transient("memory.tx", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txView{store: s, stock: make(map[string]stockWrite)}
	if err := fn(&txProducts{tx}, &txMovements{tx}); err != nil {
		return err
	}
	for id, w := range tx.stock {
		p := s.products[id]
		p.Stock = w.stock
		p.UpdatedAt = w.at
	}
	s.movements = append(s.movements, tx.movements...)
	return nil
}

// --- lecturas fuera de transacción ---

func (s *Store) GetByID(_ context.Context, businessID, productID string) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product(businessID, productID), nil
}

func (s *Store) GetForUpdate(ctx context.Context, businessID, productID string) (*entity.Product, error) {
	return s.GetByID(ctx, businessID, productID)
}

func (s *Store) SetStock(ctx context.Context, businessID, productID string, stock int, at time.Time) error {
	return s.Run(ctx, func(pr repository.ProductRepository, _ repository.MovementRepository) error {
		return pr.SetStock(ctx, businessID, productID, stock, at)
	})
}

func (s *Store) ListStock(_ context.Context, businessID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Product, 0)
	for _, p := range s.products {
		if p.BusinessID != businessID {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, s.withCategory(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Create(ctx context.Context, m *entity.Movement) error {
	return s.Run(ctx, func(_ repository.ProductRepository, mr repository.MovementRepository) error {
		return mr.Create(ctx, m)
	})
}

func (s *Store) GetByIdempotencyKey(_ context.Context, businessID, key string) (*entity.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byKey(nil, businessID, key), nil
}

func (s *Store) List(_ context.Context, businessID string, f repository.MovementFilter, limit, offset int) ([]repository.MovementRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(s.movements, businessID, f, limit, offset)
}

func (s *Store) list(movements []*entity.Movement, businessID string, f repository.MovementFilter, limit, offset int) ([]repository.MovementRow, int, error) {
	search := strings.ToLower(f.Search)
	rows := make([]repository.MovementRow, 0)
	for _, m := range movements {
		if m.BusinessID != businessID {
			continue
		}
		p := s.products[m.ProductID]
		if p == nil {
			continue
		}
		switch {
		case f.ProductID != "" && m.ProductID != f.ProductID,
			f.CategoryID != "" && p.CategoryID != f.CategoryID,
			f.Type != "" && m.Type != f.Type,
			f.From != nil && m.CreatedAt.Before(*f.From),
			f.To != nil && !m.CreatedAt.Before(*f.To),
			search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.SKU), search):
			continue
		}
		rows = append(rows, repository.MovementRow{
			Movement:     *m,
			ProductName:  p.Name,
			SKU:          p.SKU,
			CategoryID:   p.CategoryID,
			CategoryName: s.categories[p.CategoryID].Name,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if f.Ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if f.Ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})

	total := len(rows)
	if offset < 0 || offset >= total {
		return []repository.MovementRow{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return rows[offset:end], total, nil
}

func (s *Store) ListByProduct(_ context.Context, businessID, productID string, until *time.Time) ([]*entity.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Movement, 0)
	for _, m := range s.movements {
		if m.BusinessID != businessID || m.ProductID != productID {
			continue
		}
		if until != nil && m.CreatedAt.After(*until) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	// s.movements ya está en orden de escritura
	return out, nil
}

// --- helpers (requieren s.mu) ---

func (s *Store) product(businessID, productID string) *entity.Product {
	p, ok := s.products[productID]
	if !ok || p.BusinessID != businessID {
		return nil
	}
	return s.withCategory(p)
}

func (s *Store) withCategory(p *entity.Product) *entity.Product {
	cp := *p
	if c, ok := s.categories[p.CategoryID]; ok {
		cp.CategoryName = c.Name
	}
	return &cp
}

func (s *Store) byKey(staged []*entity.Movement, businessID, key string) *entity.Movement {
	if key == "" {
		return nil
	}
	for _, list := range [][]*entity.Movement{s.movements, staged} {
		for _, m := range list {
			if m.BusinessID == businessID && m.IdempotencyKey == key {
				cp := *m
				return &cp
			}
		}
	}
	return nil
}

func (s *Store) fault(op string) error {
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

// --- vista transaccional ---

type stockWrite struct {
	stock int
	at    time.Time
}

type txView struct {
	store     *Store
	stock     map[string]stockWrite
	movements []*entity.Movement
}

type txProducts struct{ tx *txView }

func (r *txProducts) GetByID(_ context.Context, businessID, productID string) (*entity.Product, error) {
	p := r.tx.store.product(businessID, productID)
	if p != nil {
		if w, ok := r.tx.stock[productID]; ok {
			p.Stock, p.UpdatedAt = w.stock, w.at
		}
	}
	return p, nil
}

func (r *txProducts) GetForUpdate(ctx context.Context, businessID, productID string) (*entity.Product, error) {
	if err := r.tx.store.fault(OpGetForUpdate); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, businessID, productID)
}

func (r *txProducts) SetStock(_ context.Context, businessID, productID string, stock int, at time.Time) error {
	if err := r.tx.store.fault(OpSetStock); err != nil {
		return err
	}
	if r.tx.store.product(businessID, productID) == nil {
		return domain.ErrProductNotFound
	}
	if stock < 0 {
		return &domain.InsufficientStockError{Available: r.tx.store.products[productID].Stock}
	}
	r.tx.stock[productID] = stockWrite{stock: stock, at: at}
	return nil
}

func (r *txProducts) ListStock(ctx context.Context, businessID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0)
	for _, p := range r.tx.store.products {
		if p.BusinessID != businessID || (filter.CategoryID != "" && p.CategoryID != filter.CategoryID) {
			continue
		}
		cp, _ := r.GetByID(ctx, businessID, p.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type txMovements struct{ tx *txView }

func (r *txMovements) Create(_ context.Context, m *entity.Movement) error {
	if err := r.tx.store.fault(OpInsertMovement); err != nil {
		return err
	}
	if m.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !m.Type.Valid() {
		return domain.ErrInvalidMovementType
	}
	if r.tx.store.byKey(r.tx.movements, m.BusinessID, m.IdempotencyKey) != nil {
		return domain.ErrIdempotencyConflict
	}
	cp := *m
	r.tx.movements = append(r.tx.movements, &cp)
	return nil
}

func (r *txMovements) GetByIdempotencyKey(_ context.Context, businessID, key string) (*entity.Movement, error) {
	return r.tx.store.byKey(r.tx.movements, businessID, key), nil
}

func (r *txMovements) List(_ context.Context, businessID string, f repository.MovementFilter, limit, offset int) ([]repository.MovementRow, int, error) {
	all := append(append([]*entity.Movement{}, r.tx.store.movements...), r.tx.movements...)
	return r.tx.store.list(all, businessID, f, limit, offset)
}

func (r *txMovements) ListByProduct(_ context.Context, businessID, productID string, until *time.Time) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0)
	for _, list := range [][]*entity.Movement{r.tx.store.movements, r.tx.movements} {
		for _, m := range list {
			if m.BusinessID != businessID || m.ProductID != productID {
				continue
			}
			if until != nil && m.CreatedAt.After(*until) {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}
