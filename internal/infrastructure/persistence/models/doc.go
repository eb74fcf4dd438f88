// Package models contains the GORM persistence models behind the
// repositories. Domain types carry no ORM tags; each model here owns its
// table mapping and converts to and from the domain with ToDomain and a
// FromDomain constructor.
package models
