// Package viewcache implements a view-scoped mirror cache for Canvas LMS
// resources. A view identifies a (Canvas instance, viewer) pair; all cache
// keys are prefixed by the serialized view so that data for distinct
// viewers never collides.
//
// Components:
//   - Key/View/Canvas/Viewer/Id: fixed-width, order-preserving binary keys.
//   - CacheEntry[R]: a resource plus Updated/Written timestamps.
//   - store.Store: the backing ordered byte-key/byte-value abstraction
//     (see store/badger and store/memstore for the two required adapters).
//   - ReplaceViewOrdered: the central algorithm that reconciles a store's
//     view-prefixed region against an ascending stream of observed keys.
//
// Sibling packages layer on top: fetch (pagination-aware upstream fetch),
// rpc (the update wire protocol), resource (concrete Canvas resource
// shapes), selector (the predicate algebra used by callers, not the cache
// itself), and server (connection handling glue).
package viewcache
