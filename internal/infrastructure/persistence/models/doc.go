// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table
// - partner.go: companies and clients
// - inventory.go: vehicles
// - trade.go: proformas, invoices and their line items
//
// The schema declares no foreign keys. Dangling references are reported by the
// integrity audit instead of being rejected on write.
package models
