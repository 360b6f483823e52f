package service

import (
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/alnoor-academy/school-cms/database"
	"github.com/alnoor-academy/school-cms/database/model"
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/storage"
)

type CarouselService struct {
	db    *gorm.DB
	store storage.FileStore
}

func NewCarouselService(db *gorm.DB, store storage.FileStore) *CarouselService {
	return &CarouselService{db: db, store: store}
}

// List returns every carousel image ordered by display order, ties broken by
// id, so two instances always render the same sequence.
func (s *CarouselService) List() ([]*model.CarouselImage, error) {
	images := make([]*model.CarouselImage, 0)
	err := s.db.Model(model.CarouselImage{}).
		Order("display_order asc, id asc").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Add stores the uploaded file first, then inserts the row at the end of the
// display order (max+1, starting at 1). If the insert fails the stored file
// is removed best-effort; a file that survives anyway is picked up by the
// orphan sweep later.
func (s *CarouselService) Add(originalName string, src io.Reader, linkURL, altText string) (*model.CarouselImage, error) {
	name := storage.UniqueName(originalName)
	url, err := s.store.Save(name, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	image := &model.CarouselImage{
		ImageURL: url,
		LinkURL:  linkURL,
		AltText:  altText,
		FileName: name,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		err := tx.Model(model.CarouselImage{}).
			Select("COALESCE(MAX(display_order), 0)").
			Scan(&maxOrder).Error
		if err != nil {
			return err
		}
		image.DisplayOrder = maxOrder + 1
		return tx.Create(image).Error
	})
	if err != nil {
		if derr := s.store.Delete(name); derr != nil {
			logger.Warningf("failed to remove stored file %s after insert error: %v", name, derr)
		}
		return nil, err
	}

	return image, nil
}

// Remove deletes the row and its backing file in one transaction. A file that
// is already gone counts as deleted; any other storage failure rolls the row
// delete back so the database and the store never disagree. Display orders of
// the remaining images are left untouched.
func (s *CarouselService) Remove(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		image := &model.CarouselImage{}
		err := tx.Model(model.CarouselImage{}).Where("id = ?", id).First(image).Error
		if database.IsNotFound(err) {
			return ErrNotFound
		} else if err != nil {
			return err
		}

		if err := tx.Where("id = ?", id).Delete(model.CarouselImage{}).Error; err != nil {
			return err
		}

		if image.FileName != "" {
			if err := s.store.Delete(image.FileName); err != nil {
				return fmt.Errorf("%w: %v", ErrStorage, err)
			}
		}
		return nil
	})
}

// FileNames returns the stored file name of every carousel image, for the
// orphan sweep.
func (s *CarouselService) FileNames() ([]string, error) {
	names := make([]string, 0)
	err := s.db.Model(model.CarouselImage{}).
		Where("file_name <> ''").
		Pluck("file_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
