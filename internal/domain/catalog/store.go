package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parvej/showcase/internal/remotestore"
)

// Store owns the authoritative in-memory catalog snapshot and keeps it
// consistent with the remote document store. All mutation goes through its
// methods; reads get an isolated copy via Snapshot.
//
// Every mutating operation writes through to the remote store first and only
// touches the local snapshot once the remote call confirmed. A failed remote
// call therefore never leaves an optimistic local change behind.
type Store struct {
	remote remotestore.Client

	mu    sync.RWMutex
	state State
}

// NewStore creates a Store over the given remote client. The snapshot starts
// empty; call LoadAll before serving reads.
func NewStore(remote remotestore.Client) *Store {
	return &Store{
		remote: remote,
		state:  State{ProductsByCollection: map[string][]Product{}},
	}
}

// Snapshot returns a copy of the current catalog state. The copy is safe to
// read after subsequent mutations; nested tag/image slices are shared and
// must be treated as read-only.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

func copyState(st State) State {
	out := State{
		Collections:          append([]Collection(nil), st.Collections...),
		ProductsByCollection: make(map[string][]Product, len(st.ProductsByCollection)),
		Shops:                append([]Shop(nil), st.Shops...),
	}
	for id, ps := range st.ProductsByCollection {
		out.ProductsByCollection[id] = append([]Product(nil), ps...)
	}
	return out
}

// LoadAll fetches collections, products, and shops concurrently and replaces
// the snapshot with the grouped result. On any remote failure the previous
// snapshot is kept untouched and the error is returned; callers must not
// assume partial success.
func (s *Store) LoadAll(ctx context.Context) error {
	var (
		collectionRecs []remotestore.Record
		productRecs    []remotestore.Record
		shopRecs       []remotestore.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		collectionRecs, err = s.remote.List(gctx, CollectionsRemote)
		return errors.Wrap(err, "list collections")
	})
	g.Go(func() (err error) {
		productRecs, err = s.remote.List(gctx, ProductsRemote)
		return errors.Wrap(err, "list products")
	})
	g.Go(func() (err error) {
		shopRecs, err = s.remote.List(gctx, ShopsRemote)
		return errors.Wrap(err, "list shops")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	next := State{
		Collections:          make([]Collection, 0, len(collectionRecs)),
		ProductsByCollection: make(map[string][]Product, len(collectionRecs)),
		Shops:                make([]Shop, 0, len(shopRecs)),
	}
	for _, rec := range collectionRecs {
		c := collectionFromRecord(rec)
		next.Collections = append(next.Collections, c)
		next.ProductsByCollection[c.ID] = []Product{}
	}
	for _, rec := range productRecs {
		p := productFromRecord(rec)
		if _, ok := next.ProductsByCollection[p.CollectionID]; !ok {
			// Orphaned product in the remote store; keep it out of the
			// snapshot so the grouping invariant holds.
			zctx.From(ctx).Warn("Skipping orphaned product",
				zap.String("product_id", p.ID),
				zap.String("collection_id", p.CollectionID))
			continue
		}
		next.ProductsByCollection[p.CollectionID] = append(next.ProductsByCollection[p.CollectionID], p)
	}
	for _, rec := range shopRecs {
		next.Shops = append(next.Shops, shopFromRecord(rec))
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return nil
}

// CreateCollection persists a new collection (the draft's ID is ignored) and
// appends the store-confirmed record to the snapshot.
func (s *Store) CreateCollection(ctx context.Context, draft Collection) (Collection, error) {
	rec, err := s.remote.Create(ctx, CollectionsRemote, remotestore.AutoID, draft.fields())
	if err != nil {
		return Collection{}, errors.Wrap(err, "create collection")
	}
	created := collectionFromRecord(rec)

	s.mu.Lock()
	s.state.Collections = append(s.state.Collections, created)
	s.state.ProductsByCollection[created.ID] = []Product{}
	s.mu.Unlock()
	return created, nil
}

// UpdateCollection persists a full replacement of the collection record and
// replaces the matching snapshot entry with the store-confirmed value.
func (s *Store) UpdateCollection(ctx context.Context, c Collection) (Collection, error) {
	if !s.hasCollection(c.ID) {
		return Collection{}, ErrCollectionNotFound
	}

	rec, err := s.remote.Update(ctx, CollectionsRemote, c.ID, c.fields())
	if err != nil {
		if errors.Is(err, remotestore.ErrNotFound) {
			return Collection{}, ErrCollectionNotFound
		}
		return Collection{}, errors.Wrap(err, "update collection")
	}
	updated := collectionFromRecord(rec)

	s.mu.Lock()
	for i := range s.state.Collections {
		if s.state.Collections[i].ID == updated.ID {
			s.state.Collections[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeleteCollection removes every product of the collection from the remote
// store first, then the collection record, then reloads the full snapshot.
// The product-first ordering is mandatory: deleting the collection first
// would orphan its products remotely.
//
// If a product deletion fails partway, already-deleted products stay deleted
// (the underlying store has no multi-document transactions), the snapshot is
// left at its pre-operation state, and a *CascadeDeleteError is returned.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	if !s.hasCollection(id) {
		return ErrCollectionNotFound
	}

	s.mu.RLock()
	products := append([]Product(nil), s.state.ProductsByCollection[id]...)
	s.mu.RUnlock()

	lg := zctx.From(ctx)
	for i, p := range products {
		if err := s.remote.Delete(ctx, ProductsRemote, p.ID); err != nil {
			return &CascadeDeleteError{
				CollectionID:    id,
				FailedProductID: p.ID,
				Deleted:         i,
				Err:             err,
			}
		}
		lg.Debug("Deleted product in cascade",
			zap.String("collection_id", id),
			zap.String("product_id", p.ID))
	}

	if err := s.remote.Delete(ctx, CollectionsRemote, id); err != nil {
		return errors.Wrap(err, "delete collection")
	}

	// Reload rather than patch locally so the snapshot reflects exactly what
	// the remote store holds after the cascade.
	return errors.Wrap(s.LoadAll(ctx), "reload after delete")
}

// CreateProduct persists a new product scoped to the given collection and
// appends the store-confirmed record to the collection's product group.
func (s *Store) CreateProduct(ctx context.Context, collectionID string, draft Product) (Product, error) {
	if draft.Price.IsNegative() {
		return Product{}, ErrNegativePrice
	}
	if !s.hasCollection(collectionID) {
		return Product{}, ErrCollectionNotFound
	}

	draft.CollectionID = collectionID
	rec, err := s.remote.Create(ctx, ProductsRemote, remotestore.AutoID, draft.fields())
	if err != nil {
		return Product{}, errors.Wrap(err, "create product")
	}
	created := productFromRecord(rec)

	s.mu.Lock()
	s.state.ProductsByCollection[collectionID] = append(s.state.ProductsByCollection[collectionID], created)
	s.mu.Unlock()
	return created, nil
}

// UpdateProduct persists a full replacement of the product record and
// replaces the matching entry in its collection's group.
func (s *Store) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	if p.Price.IsNegative() {
		return Product{}, ErrNegativePrice
	}
	if !s.hasProduct(p.CollectionID, p.ID) {
		return Product{}, ErrProductNotFound
	}

	rec, err := s.remote.Update(ctx, ProductsRemote, p.ID, p.fields())
	if err != nil {
		if errors.Is(err, remotestore.ErrNotFound) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, errors.Wrap(err, "update product")
	}
	updated := productFromRecord(rec)

	s.mu.Lock()
	group := s.state.ProductsByCollection[updated.CollectionID]
	for i := range group {
		if group[i].ID == updated.ID {
			group[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeleteProduct removes a single product from the remote store and from its
// collection's group.
func (s *Store) DeleteProduct(ctx context.Context, collectionID, productID string) error {
	if !s.hasProduct(collectionID, productID) {
		return ErrProductNotFound
	}

	if err := s.remote.Delete(ctx, ProductsRemote, productID); err != nil {
		if errors.Is(err, remotestore.ErrNotFound) {
			return ErrProductNotFound
		}
		return errors.Wrap(err, "delete product")
	}

	s.mu.Lock()
	group := s.state.ProductsByCollection[collectionID]
	for i := range group {
		if group[i].ID == productID {
			s.state.ProductsByCollection[collectionID] = append(group[:i:i], group[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// CreateShop appends a new shop name. Deduplication is advisory: it checks
// case-insensitively against the loaded snapshot only, not the remote store.
func (s *Store) CreateShop(ctx context.Context, name string) (Shop, error) {
	s.mu.RLock()
	for _, shop := range s.state.Shops {
		if strings.EqualFold(shop.Name, name) {
			s.mu.RUnlock()
			return Shop{}, ErrShopExists
		}
	}
	s.mu.RUnlock()

	rec, err := s.remote.Create(ctx, ShopsRemote, remotestore.AutoID, remotestore.Record{"name": name})
	if err != nil {
		return Shop{}, errors.Wrap(err, "create shop")
	}
	created := shopFromRecord(rec)

	s.mu.Lock()
	s.state.Shops = append(s.state.Shops, created)
	s.mu.Unlock()
	return created, nil
}

func (s *Store) hasCollection(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.ProductsByCollection[id]
	return ok
}

func (s *Store) hasProduct(collectionID, productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.state.ProductsByCollection[collectionID] {
		if p.ID == productID {
			return true
		}
	}
	return false
}
