package billing

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/rezonia/billing/internal/model"
)

const (
	maxClientNameLen = 100
	siretLen         = 14
)

// ClientInput carries the editable client fields
type ClientInput struct {
	Name  string
	Email string
	SIRET string
}

func (in ClientInput) normalize() ClientInput {
	return ClientInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		SIRET: strings.ReplaceAll(strings.TrimSpace(in.SIRET), " ", ""),
	}
}

func (in ClientInput) validate() error {
	if in.Name == "" {
		return model.NewInvalidInputError("name", nil, "is required")
	}
	if utf8.RuneCountInString(in.Name) > maxClientNameLen {
		return model.NewInvalidInputError("name", nil, "must not exceed 100 characters")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return model.NewInvalidInputError("email", in.Email, "must be a valid email address")
	}
	if len(in.SIRET) != siretLen {
		return model.NewInvalidInputError("siret", in.SIRET, "must be exactly 14 characters")
	}
	return nil
}

// ListClients returns every client
func (s *Service) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.repo.ListClients(ctx)
}

// GetClient returns one client
func (s *Service) GetClient(ctx context.Context, id uint) (*model.Client, error) {
	return s.repo.ClientByID(ctx, id)
}

// CreateClient registers a client with a unique email and SIRET
func (s *Service) CreateClient(ctx context.Context, in ClientInput) (*model.Client, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in, 0); err != nil {
		return nil, err
	}

	c := &model.Client{Name: in.Name, Email: in.Email, SIRET: in.SIRET}
	if err := s.repo.SaveClient(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("client created", zap.Uint("id", c.ID), zap.String("siret", c.SIRET))
	return c, nil
}

// UpdateClient replaces the editable fields of an existing client
func (s *Service) UpdateClient(ctx context.Context, id uint, in ClientInput) (*model.Client, error) {
	c, err := s.repo.ClientByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in, c.ID); err != nil {
		return nil, err
	}

	c.Name = in.Name
	c.Email = in.Email
	c.SIRET = in.SIRET
	if err := s.repo.SaveClient(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("client updated", zap.Uint("id", c.ID))
	return c, nil
}

// DeleteClient removes a client that has no invoices. The check and the
// delete share one transaction.
func (s *Service) DeleteClient(ctx context.Context, id uint) error {
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if _, err := tx.ClientByID(ctx, id); err != nil {
			return err
		}

		n, err := tx.CountInvoicesByClient(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return model.NewInUseError("client", id, "client still has invoices")
		}

		return tx.DeleteClient(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("client deleted", zap.Uint("id", id))
	return nil
}

func (s *Service) checkUnique(ctx context.Context, in ClientInput, exceptID uint) error {
	exists, err := s.repo.ClientExistsByEmail(ctx, in.Email, exceptID)
	if err != nil {
		return err
	}
	if exists {
		return model.NewDuplicateError("client", "email", in.Email)
	}

	exists, err = s.repo.ClientExistsBySIRET(ctx, in.SIRET, exceptID)
	if err != nil {
		return err
	}
	if exists {
		return model.NewDuplicateError("client", "siret", in.SIRET)
	}
	return nil
}
