// Package cart keeps a process-wide shopping cart in memory.
package cart

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/go-shop-nosql/internal/domain"
)

// DefaultEURToINR is used when no positive rate is configured.
const DefaultEURToINR = 90.0

// Ledger is an insertion-ordered list of cart lines keyed by product id.
// It is safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	lines []domain.CartLine
	rate  float64
}

func NewLedger(eurToINR float64) *Ledger {
	if eurToINR <= 0 {
		eurToINR = DefaultEURToINR
	}
	return &Ledger{rate: eurToINR}
}

// AddOrIncrement adds line.Quantity to an existing line with the same id, or
// appends line when the id is new. Quantities are not validated.
func (l *Ledger) AddOrIncrement(line domain.CartLine) []domain.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(line.ID); i >= 0 {
		l.lines[i].Quantity += line.Quantity
	} else {
		l.lines = append(l.lines, line)
	}
	return l.snapshot()
}

// AdjustQuantity applies delta, clamping at zero. A line that reaches zero is
// removed.
func (l *Ledger) AdjustQuantity(id int64, delta int) ([]domain.CartLine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	l.lines[i].Quantity = max(0, l.lines[i].Quantity+delta)
	if l.lines[i].Quantity == 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	}
	return l.snapshot(), nil
}

func (l *Ledger) Remove(id int64) ([]domain.CartLine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	return l.snapshot(), nil
}

// Lines returns a copy of the cart in insertion order.
func (l *Ledger) Lines() []domain.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Subtotal is the sum of price times quantity, formatted with two decimals.
func (l *Ledger) Subtotal() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := lo.SumBy(l.lines, func(line domain.CartLine) float64 {
		return line.Price * float64(line.Quantity)
	})
	return fmt.Sprintf("%.2f", total)
}

// Convert prices quantity units of priceEUR in rupees.
func (l *Ledger) Convert(priceEUR float64, quantity int) string {
	return fmt.Sprintf("%.2f", priceEUR*float64(quantity)*l.rate)
}

func (l *Ledger) indexOf(id int64) int {
	_, i, ok := lo.FindIndexOf(l.lines, func(line domain.CartLine) bool {
		return line.ID == id
	})
	if !ok {
		return -1
	}
	return i
}

func (l *Ledger) snapshot() []domain.CartLine {
	out := make([]domain.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}
