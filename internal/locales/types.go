// Package locales keeps the catalog of locale codes entities may be written
// in.
package locales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Locale is one entry of the catalog.
type Locale struct {
	bun.BaseModel `bun:"table:locales,alias:l"`

	ID         uuid.UUID `bun:",pk,type:uuid"                                 json:"id"`
	Code       string    `bun:"code,notnull,unique"                           json:"code"`
	Display    string    `bun:"display_name,notnull"                          json:"display_name"`
	NativeName *string   `bun:"native_name"                                   json:"native_name,omitempty"`
	IsActive   bool      `bun:"is_active,notnull,default:true"                json:"is_active"`
	IsDefault  bool      `bun:"is_default,notnull,default:false"              json:"is_default"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Repository persists catalog entries.
type Repository interface {
	Create(ctx context.Context, locale *Locale) (*Locale, error)
	GetByCode(ctx context.Context, code string) (*Locale, error)
	List(ctx context.Context) ([]*Locale, error)
}

// NotFoundError is returned when a code has no catalog entry.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
