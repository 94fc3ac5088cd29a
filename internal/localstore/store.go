// Package localstore keeps the SQLite fallback the POS runs on when
// the backend is unreachable, and doubles as the dev server's storage.
package localstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mvgarcia/taproom/pkg/db"
	"github.com/mvgarcia/taproom/pkg/db/models"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

// StoreParams wires the local store dependencies.
type StoreParams struct {
	Client        *db.Client
	Logger        *logger.Logger
	DefaultTables int
}

// Store bundles the fallback repositories over one SQLite database.
type Store struct {
	client        *db.Client
	logger        *logger.Logger
	defaultTables int
}

// NewStore validates params and builds the store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.DefaultTables <= 0 {
		params.DefaultTables = 10
	}
	return &Store{
		client:        params.Client,
		logger:        params.Logger,
		defaultTables: params.DefaultTables,
	}, nil
}

// Migrate creates or updates the fallback schema and seeds the default
// numbered tables when none exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.client.DB().WithContext(ctx).AutoMigrate(
		&models.Table{},
		&models.TableItem{},
		&models.Product{},
		&models.Category{},
		&models.Company{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.LocalUser{},
		&models.StockMovement{},
		&models.OrderCounter{},
	)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "migrate local store")
	}

	var count int64
	if err := s.client.DB().WithContext(ctx).Model(&models.Table{}).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count tables")
	}
	if count == 0 {
		if err := s.seedDefaultTables(ctx, s.client.DB()); err != nil {
			return err
		}
		s.logger.Info(ctx, "seeded default tables")
	}
	return nil
}

// seedDefaultTables creates the venue's numbered tables, all free.
func (s *Store) seedDefaultTables(ctx context.Context, tx *gorm.DB) error {
	for i := 1; i <= s.defaultTables; i++ {
		table := models.Table{
			Name:   fmt.Sprintf("Mesa %02d", i),
			Number: fmt.Sprintf("%02d", i),
			Slug:   fmt.Sprintf("mesa-%02d", i),
			Status: enums.TableStatusFree,
		}
		if err := tx.WithContext(ctx).Create(&table).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed default table")
		}
	}
	return nil
}

// Ping verifies the datasource is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
