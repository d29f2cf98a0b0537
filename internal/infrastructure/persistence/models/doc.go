// Package models contains GORM persistence models for the ledger tables.
// Domain aggregates stay free of ORM tags; each model converts to and from
// its aggregate with ToDomain / FromDomain.
//
// Files:
//   - base.go: shared ID, timestamp and version columns
//   - procurement.go: shipments, lines, expenses, receptions, discrepancies
//   - inventory.go: stock units derived from iron receptions
//   - partner.go: customers and consignment vehicles
//   - sales.go: sales and sale items
//   - finance.go: payment records and their allocations
package models
