package geo

import (
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/frame"
)

// DirectoryEntry is one row of the canonical municipality directory.
type DirectoryEntry struct {
	ID   string // six-digit IBGE municipality code
	Name string
	UF   string
}

// Collision records directory entries that share a composite key. The
// first entry wins deterministically; the rest are reported so a shared
// name across regions is never silently mis-mapped.
type Collision struct {
	Key     string
	KeptID  string
	LostIDs []string
}

// Lookup maps composite keys to canonical municipality IDs.
type Lookup struct {
	byKey      map[string]string
	collisions []Collision
}

// BuildLookup deduplicates directory entries by composite key and returns
// the one-to-one lookup plus every collision encountered.
func BuildLookup(entries []DirectoryEntry) *Lookup {
	byKey := make(map[string]string, len(entries))
	colliding := make(map[string]*Collision)

	for _, e := range entries {
		key := CompositeKey(e.Name, e.UF)
		kept, dup := byKey[key]
		if !dup {
			byKey[key] = e.ID
			continue
		}
		if kept == e.ID {
			continue // same municipality listed twice
		}
		c, ok := colliding[key]
		if !ok {
			c = &Collision{Key: key, KeptID: kept}
			colliding[key] = c
		}
		c.LostIDs = append(c.LostIDs, e.ID)
	}

	l := &Lookup{byKey: byKey}
	for _, c := range colliding {
		l.collisions = append(l.collisions, *c)
	}

	if len(l.collisions) > 0 {
		log := zap.L().With(zap.String("component", "geo.lookup"))
		for _, c := range l.collisions {
			log.Warn("composite key collision, keeping first entry",
				zap.String("key", c.Key),
				zap.String("kept_id", c.KeptID),
				zap.Strings("lost_ids", c.LostIDs),
			)
		}
	}

	return l
}

// Get resolves a name/state pair to a municipality ID.
func (l *Lookup) Get(name, uf string) (string, bool) {
	id, ok := l.byKey[CompositeKey(name, uf)]
	return id, ok
}

// Len returns the number of distinct composite keys.
func (l *Lookup) Len() int { return len(l.byKey) }

// Collisions returns the collisions recorded while building the lookup.
func (l *Lookup) Collisions() []Collision { return l.collisions }

// Resolution is the diagnostic outcome of applying a lookup to a table.
// It is informational, never an error: callers decide whether unresolved
// rows are dropped.
type Resolution struct {
	Total    int
	Resolved int
}

// Rate returns the resolved fraction, 0 for an empty input.
func (r Resolution) Rate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Resolved) / float64(r.Total)
}

// Resolve adds idCol to the target frame, filling it from the lookup keyed
// by the name and state columns. Unresolved rows keep the missing
// sentinel. The returned Resolution reports the hit rate.
func (l *Lookup) Resolve(target *frame.Frame, nameCol, ufCol, idCol string) (Resolution, error) {
	if !target.HasColumn(idCol) {
		if err := target.AddColumn(idCol); err != nil {
			return Resolution{}, err
		}
	}

	res := Resolution{Total: target.NumRows()}
	for i := 0; i < target.NumRows(); i++ {
		name := target.Cell(i, nameCol)
		uf := target.Cell(i, ufCol)
		if id, ok := l.Get(name, uf); ok {
			if err := target.SetCell(i, idCol, id); err != nil {
				return res, err
			}
			res.Resolved++
		}
	}

	zap.L().Info("geo: resolution rate",
		zap.Int("resolved", res.Resolved),
		zap.Int("total", res.Total),
		zap.Float64("rate", res.Rate()),
	)
	return res, nil
}
