package vault

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/BriarPort/TILT/internal/osint"
)

// ErrNotFound is returned when a record with the requested ID does not
// exist.
var ErrNotFound = errors.New("record not found")

// ListVendors returns all vendors, most recently updated first.
func (s *Session) ListVendors() ([]Vendor, error) {
	var vendors []Vendor
	if err := s.db.Order("updated_at DESC").Find(&vendors).Error; err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	return vendors, nil
}

// GetVendor returns a single vendor by ID.
func (s *Session) GetVendor(id uint) (Vendor, error) {
	var vendor Vendor
	err := s.db.First(&vendor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Vendor{}, ErrNotFound
	}
	if err != nil {
		return Vendor{}, fmt.Errorf("loading vendor %d: %w", id, err)
	}
	return vendor, nil
}

// CreateVendor inserts a new vendor and returns its assigned ID.
func (s *Session) CreateVendor(vendor *Vendor) error {
	if err := s.db.Create(vendor).Error; err != nil {
		return fmt.Errorf("creating vendor: %w", err)
	}
	return nil
}

// UpdateVendor replaces the stored record for vendor.ID.
func (s *Session) UpdateVendor(vendor *Vendor) error {
	res := s.db.Model(&Vendor{}).Where("id = ?", vendor.ID).Select("*").
		Omit("id", "created_at").Updates(vendor)
	if res.Error != nil {
		return fmt.Errorf("updating vendor %d: %w", vendor.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVendor removes a vendor by ID.
func (s *Session) DeleteVendor(id uint) error {
	res := s.db.Delete(&Vendor{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting vendor %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateVendorOSINT stores scan warnings and the recomputed vulnerability
// for a vendor. Split from UpdateVendor because a scan only touches these
// fields and must not clobber a concurrent assessment edit.
func (s *Session) UpdateVendorOSINT(id uint, warnings []osint.Warning, vulnerability int) error {
	res := s.db.Model(&Vendor{}).Where("id = ?", id).
		Select("OSINTWarnings", "Vulnerability").
		Updates(&Vendor{OSINTWarnings: warnings, Vulnerability: vulnerability})
	if res.Error != nil {
		return fmt.Errorf("updating vendor %d osint results: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
