package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/desertthunder/mosaic/internal/shared"
)

// ScrollAnchor is the saved scroll offset of one list.
type ScrollAnchor struct {
	id        string
	key       string
	offset    float64
	createdAt time.Time
	updatedAt time.Time
}

// NewScrollAnchor creates an unsaved anchor.
func NewScrollAnchor(key string, offset float64) *ScrollAnchor {
	now := time.Now()
	return &ScrollAnchor{key: key, offset: offset, createdAt: now, updatedAt: now}
}

func (a *ScrollAnchor) ID() string           { return a.id }
func (a *ScrollAnchor) Key() string          { return a.key }
func (a *ScrollAnchor) Offset() float64      { return a.offset }
func (a *ScrollAnchor) CreatedAt() time.Time { return a.createdAt }
func (a *ScrollAnchor) UpdatedAt() time.Time { return a.updatedAt }

func (a *ScrollAnchor) SetID(id string)          { a.id = id }
func (a *ScrollAnchor) SetOffset(offset float64) { a.offset = offset }
func (a *ScrollAnchor) SetCreatedAt(t time.Time) { a.createdAt = t }
func (a *ScrollAnchor) SetUpdatedAt(t time.Time) { a.updatedAt = t }

// Validate checks if the anchor's data is valid.
func (a *ScrollAnchor) Validate() error {
	if strings.TrimSpace(a.key) == "" {
		return fmt.Errorf("%w: anchor key is required", shared.ErrInvalidInput)
	}
	if a.offset < 0 || math.IsNaN(a.offset) || math.IsInf(a.offset, 0) {
		return fmt.Errorf("%w: anchor offset must be a finite non-negative number", shared.ErrInvalidInput)
	}
	return nil
}
