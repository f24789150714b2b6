package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

type CategoryInput struct {
	Name        string
	Description string
	Icon        string
	ParentID    *uuid.UUID
	IsActive    *bool
}

type CategoryStats struct {
	TotalServices  int64   `json:"total_services"`
	ActiveServices int64   `json:"active_services"`
	TotalProviders int     `json:"total_providers"`
	AverageRating  float64 `json:"average_rating"`
	TotalBookings  int64   `json:"total_bookings"`
}

// CategoryService управляет деревом категорий. Запись доступна только admin.
type CategoryService struct {
	categories repository.CategoryRepository
	services   repository.ServiceRepository
	providers  repository.ProviderRepository
	bookings   repository.BookingRepository
}

func NewCategoryService(
	categories repository.CategoryRepository,
	services repository.ServiceRepository,
	providers repository.ProviderRepository,
	bookings repository.BookingRepository,
) *CategoryService {
	return &CategoryService{categories: categories, services: services, providers: providers, bookings: bookings}
}

func (s *CategoryService) Create(ctx context.Context, actor Actor, in CategoryInput) (*model.Category, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidArg("name is required")
	}
	if in.ParentID != nil {
		if _, err := s.categories.GetByID(ctx, *in.ParentID); err != nil {
			return nil, storeErr(err, "parent category")
		}
	}

	c := &model.Category{
		Name:        name,
		Description: in.Description,
		Icon:        in.Icon,
		ParentID:    in.ParentID,
		IsActive:    true,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, storeErr(err, "category")
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	items, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return nonNil(items), nil
}

// Tree returns the forest of categories. A category whose parent is absent
// from the listing (for example an inactive parent with activeOnly) becomes
// a root.
func (s *CategoryService) Tree(ctx context.Context, activeOnly bool) ([]*model.CategoryNode, error) {
	items, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return BuildTree(items), nil
}

// BuildTree links categories by parent_id, keeping input order among
// siblings.
func BuildTree(items []model.Category) []*model.CategoryNode {
	nodes := make(map[uuid.UUID]*model.CategoryNode, len(items))
	for _, c := range items {
		nodes[c.ID] = &model.CategoryNode{Category: c, Children: []*model.CategoryNode{}}
	}

	roots := []*model.CategoryNode{}
	for _, c := range items {
		n := nodes[c.ID]
		if c.ParentID != nil && *c.ParentID != c.ID {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

func (s *CategoryService) Children(ctx context.Context, id uuid.UUID) ([]model.Category, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.categories.ListChildren(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return nonNil(items), nil
}

func (s *CategoryService) Services(ctx context.Context, id uuid.UUID, page calendar.PageRequest) (calendar.Page[model.Service], error) {
	if _, err := s.Get(ctx, id); err != nil {
		return calendar.Page[model.Service]{}, err
	}
	items, total, err := s.services.List(ctx, repository.ServiceFilter{CategoryID: &id}, page)
	if err != nil {
		return calendar.Page[model.Service]{}, fmt.Errorf("list services: %w", err)
	}
	return calendar.NewPage(items, page, total), nil
}

// Stats averages provider ratings over the distinct providers offering
// services in the category.
func (s *CategoryService) Stats(ctx context.Context, id uuid.UUID) (*CategoryStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	total, active, err := s.services.CountByCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}
	providerIDs, err := s.services.ProviderIDs(ctx, repository.ServiceFilter{CategoryID: &id})
	if err != nil {
		return nil, fmt.Errorf("category providers: %w", err)
	}
	providers, err := s.providers.ListByIDs(ctx, providerIDs)
	if err != nil {
		return nil, fmt.Errorf("category providers: %w", err)
	}
	bookings, err := s.bookings.Count(ctx, repository.BookingFilter{CategoryID: &id})
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	return &CategoryStats{
		TotalServices:  total,
		ActiveServices: active,
		TotalProviders: len(providers),
		AverageRating:  MeanRating(providers),
		TotalBookings:  bookings,
	}, nil
}

func (s *CategoryService) Update(ctx context.Context, actor Actor, id uuid.UUID, in CategoryInput) (*model.Category, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) != "" {
		c.Name = strings.TrimSpace(in.Name)
	}
	c.Description = in.Description
	c.Icon = in.Icon
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.ParentID != nil {
		if err := s.checkParent(ctx, id, *in.ParentID); err != nil {
			return nil, err
		}
	}
	c.ParentID = in.ParentID

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, storeErr(err, "category")
	}
	return s.Get(ctx, id)
}

// checkParent rejects a parent that is id itself or one of its descendants.
func (s *CategoryService) checkParent(ctx context.Context, id, parentID uuid.UUID) error {
	seen := map[uuid.UUID]bool{}
	cur := parentID
	for {
		if cur == id {
			return fmt.Errorf("%w: category cannot be its own ancestor", ErrDomainRule)
		}
		if seen[cur] {
			return fmt.Errorf("%w: category parent chain contains a cycle", ErrDomainRule)
		}
		seen[cur] = true

		c, err := s.categories.GetByID(ctx, cur)
		if err != nil {
			return storeErr(err, "parent category")
		}
		if c.ParentID == nil {
			return nil
		}
		cur = *c.ParentID
	}
}

// Delete refuses to orphan children or services.
func (s *CategoryService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	children, err := s.categories.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("%w: category has %d child categories", ErrDomainRule, children)
	}
	services, _, err := s.services.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count services: %w", err)
	}
	if services > 0 {
		return fmt.Errorf("%w: category has %d services", ErrDomainRule, services)
	}
	return storeErr(s.categories.Delete(ctx, id), "category")
}
