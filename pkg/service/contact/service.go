// Package contact manages the counterparties an account saves for repeat
// transfers.
package contact

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/speibank/pkg/bank"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/domain/contact"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/mapper"
	"github.com/amirasaad/speibank/pkg/repository"
	contactrepo "github.com/amirasaad/speibank/pkg/repository/contact"
	"github.com/google/uuid"
)

// Service provides contact CRUD scoped to the owning account.
type Service struct {
	uow       repository.UnitOfWork
	directory *bank.Directory
	logger    *slog.Logger
}

// New creates a contact service. A nil directory uses the built-in tables.
func New(uow repository.UnitOfWork, directory *bank.Directory, logger *slog.Logger) *Service {
	if directory == nil {
		directory = bank.Default(bank.DefaultInstitutionCode)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, directory: directory, logger: logger.With("service", "contact")}
}

// Create saves a counterparty. It returns contact.ErrDuplicateContact when the
// account already has a contact with the same CLABE or card number.
func (s *Service) Create(ctx context.Context, c contact.Contact) (*contact.Contact, error) {
	log := s.logger.With("account_id", c.AccountID)
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s.fillBankName(&c)

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.GetRepo[contactrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := ensureUnique(ctx, repo, c.AccountID, c.Number(), uuid.Nil); err != nil {
			return err
		}
		c.ID = uuid.New()
		if err := repo.Create(ctx, mapper.MapContactToCreate(&c)); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return contact.ErrDuplicateContact
			}
			return err
		}
		read, err := repo.Get(ctx, c.ID)
		if err != nil {
			return err
		}
		c = *mapper.MapContactReadToDomain(read)
		return nil
	})
	if err != nil {
		log.Debug("contact not created", "error", err)
		return nil, err
	}
	log.Info("contact created", "contact_id", c.ID)
	return &c, nil
}

// List returns the contacts of an account ordered by name.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*contact.Contact, error) {
	repo, err := repository.GetRepo[contactrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]*contact.Contact, 0, len(reads))
	for _, r := range reads {
		out = append(out, mapper.MapContactReadToDomain(r))
	}
	return out, nil
}

// Update applies a partial change to a contact owned by accountID. Changing
// the CLABE re-resolves the bank name unless one is given.
func (s *Service) Update(
	ctx context.Context,
	accountID, id uuid.UUID,
	update dto.ContactUpdate,
) (c *contact.Contact, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.GetRepo[contactrepo.Repository](uow)
		if err != nil {
			return err
		}
		current, err := owned(ctx, repo, accountID, id)
		if err != nil {
			return err
		}
		next := *current
		apply(&next, update)
		next.Normalize()
		if err := next.Validate(); err != nil {
			return err
		}
		if next.Clabe != current.Clabe && update.BankName == nil {
			next.BankName = ""
		}
		s.fillBankName(&next)
		if next.Number() != current.Number() {
			if err := ensureUnique(ctx, repo, accountID, next.Number(), id); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, id, dto.ContactUpdate{
			Name:       &next.Name,
			Alias:      &next.Alias,
			BankName:   &next.BankName,
			Clabe:      &next.Clabe,
			CardNumber: &next.CardNumber,
			Email:      &next.Email,
		}); err != nil {
			return err
		}
		read, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		c = mapper.MapContactReadToDomain(read)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("contact updated", "contact_id", id)
	return c, nil
}

// Delete removes a contact owned by accountID.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.GetRepo[contactrepo.Repository](uow)
		if err != nil {
			return err
		}
		if _, err := owned(ctx, repo, accountID, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("contact deleted", "contact_id", id)
	return nil
}

func (s *Service) fillBankName(c *contact.Contact) {
	if c.BankName != "" || c.Clabe == "" {
		return
	}
	res, err := s.directory.ResolveBank(c.Clabe)
	if err != nil {
		s.logger.Debug("bank not in directory", "code", res.BankCode)
	}
	c.BankName = res.BankName
}

// owned loads a contact and hides contacts of other accounts.
func owned(ctx context.Context, repo contactrepo.Repository, accountID, id uuid.UUID) (*contact.Contact, error) {
	read, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, contact.ErrContactNotFound
		}
		return nil, err
	}
	if read.AccountID != accountID {
		return nil, contact.ErrContactNotFound
	}
	return mapper.MapContactReadToDomain(read), nil
}

func ensureUnique(ctx context.Context, repo contactrepo.Repository, accountID uuid.UUID, number string, self uuid.UUID) error {
	existing, err := repo.FindByNumber(ctx, accountID, number)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return contact.ErrDuplicateContact
	}
	return nil
}

func apply(c *contact.Contact, u dto.ContactUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Alias != nil {
		c.Alias = *u.Alias
	}
	if u.BankName != nil {
		c.BankName = *u.BankName
	}
	if u.Clabe != nil {
		c.Clabe = *u.Clabe
	}
	if u.CardNumber != nil {
		c.CardNumber = *u.CardNumber
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
}
