package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialdesk/internal/domain"
	"socialdesk/internal/event"
	"socialdesk/internal/repo"
	"socialdesk/pkg/utils"
)

// TicketService is the minimal write surface over support tickets. Every write
// publishes events inside its transaction; statistics and notifications hang off them.
type TicketService struct {
	db       *gorm.DB
	identity domain.IdentityLookup
	bus      *event.Bus
	stats    *StatsService
	log      *zap.Logger
}

func NewTicketService(db *gorm.DB, identity domain.IdentityLookup, bus *event.Bus, stats *StatsService, l *zap.Logger) *TicketService {
	if l == nil {
		l = zap.NewNop()
	}
	return &TicketService{db: db, identity: identity, bus: bus, stats: stats, log: l.Named("tickets")}
}

func (s *TicketService) CreateTicket(ctx context.Context, email, title, content string) (*domain.Ticket, error) {
	email, title = strings.TrimSpace(email), strings.TrimSpace(title)
	if email == "" || title == "" {
		return nil, domain.ErrInvalidInput
	}
	t := &domain.Ticket{
		ID:      utils.NewID(),
		Email:   email,
		Title:   title,
		Content: content,
		Status:  domain.TicketPending,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.NewTicketRepo(tx).Create(ctx, t); err != nil {
			return err
		}
		return s.bus.Publish(ctx, tx, domain.TicketCreated{Ticket: *t})
	})
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	s.afterCommit(ctx)
	return t, nil
}

// ReplyToTicket stores reply. Only the first reply (unset → set) notifies the owner;
// later edits overwrite the text silently.
func (s *TicketService) ReplyToTicket(ctx context.Context, ticketID, reply string) (*domain.Ticket, error) {
	if strings.TrimSpace(reply) == "" || utf8.RuneCountInString(reply) > domain.MaxReplyLen {
		return nil, domain.ErrInvalidInput
	}
	current, err := repo.NewTicketRepo(s.db).Get(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	// owner lookup happens before the unit of work: the provider is not transactional
	ownerID, _, err := s.identity.Resolve(ctx, current.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve ticket owner: %w", err)
	}

	var out *domain.Ticket
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tickets := repo.NewTicketRepo(tx)
		added, err := tickets.SetReplyIfUnset(ctx, ticketID, reply, time.Now().UTC())
		if err != nil {
			return err
		}
		if !added {
			ok, err := tickets.UpdateReply(ctx, ticketID, reply)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrNotFound
			}
		}
		if out, err = tickets.Get(ctx, ticketID); err != nil {
			return err
		}
		if out == nil {
			return domain.ErrNotFound
		}
		if err := s.bus.Publish(ctx, tx, domain.TicketUpdated{Ticket: *out}); err != nil {
			return err
		}
		if added {
			return s.bus.Publish(ctx, tx, domain.TicketReplyAdded{Ticket: *out, OwnerID: ownerID})
		}
		return nil
	})
	if err != nil {
		if domain.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("reply to ticket: %w", err)
	}
	s.afterCommit(ctx)
	return out, nil
}

func (s *TicketService) SetTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *domain.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tickets := repo.NewTicketRepo(tx)
		ok, err := tickets.SetStatus(ctx, ticketID, status)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		if out, err = tickets.Get(ctx, ticketID); err != nil {
			return err
		}
		if out == nil {
			return domain.ErrNotFound
		}
		return s.bus.Publish(ctx, tx, domain.TicketUpdated{Ticket: *out})
	})
	if err != nil {
		if domain.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("set ticket status: %w", err)
	}
	s.afterCommit(ctx)
	return out, nil
}

func (s *TicketService) afterCommit(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}
