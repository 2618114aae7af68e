package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// Replay reconstruye el stock sumando los deltas firmados de los movimientos en orden.
// minBalance es el menor saldo intermedio observado; si es negativo el libro está corrupto.
func Replay(movements []*entity.Movement) (stock, minBalance int) {
	for _, m := range movements {
		stock += m.Delta()
		if stock < minBalance {
			minBalance = stock
		}
	}
	return stock, minBalance
}
