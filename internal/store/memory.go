package store

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Group acumula pedidos e ingresos para una combinación de claves.
type Group struct {
	Keys    []string
	Orders  int
	Revenue decimal.Decimal
}

// MemoryStore agrupa pedidos en memoria conservando el orden en que aparece
// cada clave. Vive lo que dura un request; no es seguro para uso concurrente.
type MemoryStore struct {
	idx    map[string]int
	groups []*Group
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{idx: make(map[string]int)}
}

func (s *MemoryStore) Upsert(revenue decimal.Decimal, keys ...string) {
	k := strings.Join(keys, "\x00")
	i, ok := s.idx[k]
	if !ok {
		i = len(s.groups)
		s.idx[k] = i
		s.groups = append(s.groups, &Group{Keys: append([]string(nil), keys...)})
	}
	g := s.groups[i]
	g.Orders++
	g.Revenue = g.Revenue.Add(revenue)
}

func (s *MemoryStore) Len() int { return len(s.groups) }

// All devuelve copias en orden de primera aparición.
func (s *MemoryStore) All() []Group {
	out := make([]Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *g)
	}
	return out
}
