package localstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mvgarcia/taproom/pkg/db/models"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

// NextOrderNumber issues the next daily order number from the single
// counter row. The read and bump happen in one transaction, so two
// callers on the same store can never draw the same number; a new day
// resets the sequence to 1.
func (s *Store) NextOrderNumber(ctx context.Context, day string) (int, error) {
	if day == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "day is required")
	}

	var issued int
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var counter models.OrderCounter
		err := tx.First(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = models.OrderCounter{Day: day, Highest: 1}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
			issued = 1
			return nil
		case err != nil:
			return err
		}

		if counter.Day != day {
			counter.Day = day
			counter.Highest = 0
		}
		counter.Highest++
		issued = counter.Highest
		return tx.Save(&counter).Error
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next order number")
	}
	return issued, nil
}
