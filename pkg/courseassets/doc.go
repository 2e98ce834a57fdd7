// Package courseassets tracks which course content items reference
// which stored assets, so unreferenced assets can be garbage-collected
// and asset usage can be queried.
//
// It exposes a single Service interface. The service consumes content
// lifecycle events (inserted, updated, replaced, deleted), extracts the
// asset paths embedded in each item's payload, resolves them against an
// AssetCatalog, and keeps a reference-counted Ledger consistent with
// the current reference graph. Ledger implementations (memory,
// Postgres) live under subpackages; the catalog and blob storage belong
// to the asset-storage collaborator and are injected as interfaces.
//
// Reconciliation writes absolute target counts rather than relative
// deltas, so replaying an event (at-least-once delivery) or abandoning
// a reconciliation midway never corrupts the ledger.
package courseassets
