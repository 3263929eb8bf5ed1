package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Cfg   config.Config
	Log   *zap.Logger
	Repo  domain.Repository
	Store cache.Store `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	cfg   config.Config
	log   *zap.Logger
	repo  domain.Repository
	store cache.Store
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		cfg:   p.Cfg,
		log:   p.Log.Named("customer.service"),
		repo:  p.Repo,
		store: p.Store,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	customer := domain.Customer{
		ID:       id,
		Name:     name,
		Email:    email,
		ImageURL: strings.TrimSpace(req.ImageURL),
	}
	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	if s.store != nil {
		if err := s.store.InvalidateTags(ctx, domain.CustomersPath); err != nil {
			s.log.Warn("customer cache invalidation failed", zap.Error(err))
		}
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context) (domain.ListCustomerResponse, error) {
	return cache.Remember(ctx, s.store, s.log, cache.Key("customers", "list"), s.cfg.Cache.TTL, []string{domain.CustomersPath},
		func(ctx context.Context) (domain.ListCustomerResponse, error) {
			items, err := s.repo.List(ctx, s.db)
			if err != nil {
				return domain.ListCustomerResponse{}, err
			}
			customers := make([]domain.Customer, 0, len(items))
			for _, item := range items {
				if item == nil {
					continue
				}
				customers = append(customers, *item)
			}
			return domain.ListCustomerResponse{Customers: customers}, nil
		})
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Customer{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}
