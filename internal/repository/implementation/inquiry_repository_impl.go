package implementation

import (
	"context"
	"errors"

	"exchange-support-be/internal/entity"
	"exchange-support-be/internal/mapper"
	"exchange-support-be/internal/model"
	"exchange-support-be/internal/repository/contract"
	"exchange-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InquiryMapper
}

func NewInquiryRepository(db *gorm.DB) contract.InquiryRepository {
	return &InquiryRepositoryImpl{
		db:     db,
		mapper: mapper.NewInquiryMapper(),
	}
}

func (r *InquiryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InquiryRepositoryImpl) Create(ctx context.Context, inquiry *entity.Inquiry) error {
	m := r.mapper.ToModel(inquiry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*inquiry = *r.mapper.ToEntity(m)
	return nil
}

func (r *InquiryRepositoryImpl) Update(ctx context.Context, inquiry *entity.Inquiry) error {
	m := r.mapper.ToModel(inquiry)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*inquiry = *r.mapper.ToEntity(m)
	return nil
}

func (r *InquiryRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Inquiry{}, id).Error
}

func (r *InquiryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Inquiry, error) {
	var m model.Inquiry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InquiryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Inquiry, error) {
	var models []*model.Inquiry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Inquiry, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *InquiryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Inquiry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
