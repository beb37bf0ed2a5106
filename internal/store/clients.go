package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rezonia/billing/internal/model"
)

func (s *Store) ClientByID(ctx context.Context, id uint) (*model.Client, error) {
	var c model.Client
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "client", id)
	}
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := s.db.WithContext(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Store) ClientExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error) {
	return s.clientExists(ctx, "email = ?", email, exceptID)
}

func (s *Store) ClientExistsBySIRET(ctx context.Context, siret string, exceptID uint) (bool, error) {
	return s.clientExists(ctx, "siret = ?", siret, exceptID)
}

func (s *Store) clientExists(ctx context.Context, cond string, value string, exceptID uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Client{}).Where(cond, value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveClient inserts a new client or updates an existing one
func (s *Store) SaveClient(ctx context.Context, c *model.Client) error {
	err := s.db.WithContext(ctx).Save(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.NewDuplicateError("client", "email or siret", c.Email+" / "+c.SIRET)
	}
	return err
}

func (s *Store) DeleteClient(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Client{}, id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return model.NewInUseError("client", id, "client still has invoices")
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.NewNotFoundError("client", id)
	}
	return nil
}
