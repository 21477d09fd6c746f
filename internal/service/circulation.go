package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maint-logbook/internal/database"
	"maint-logbook/internal/models"

	"gorm.io/gorm"
)

type CirculationService struct{ db *gorm.DB }

func NewCirculationService(db *gorm.DB) *CirculationService { return &CirculationService{db: db} }

type RouteInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UserIDs     []uint `json:"userIds"`
}

type DecisionInput struct {
	Status  models.CirculationStatus `json:"status"`
	Comment string                   `json:"comment"`
}

// CreateRoute stores a route whose member order follows UserIDs.
// Repeated users are kept as separate members.
func (s *CirculationService) CreateRoute(ctx context.Context, actor Actor, in RouteInput) (*models.CirculationRoute, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInput("route name is required")
	}

	route := models.CirculationRoute{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedByID: user.ID,
	}
	for i, uid := range in.UserIDs {
		route.Members = append(route.Members, models.CirculationRouteMember{UserID: uid, Position: i + 1})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		want, got, err := countIDs(tx, &models.User{}, in.UserIDs)
		if err != nil {
			return fmt.Errorf("check route members: %w", err)
		}
		if int64(want) != got {
			return invalidInput("route member user not found")
		}
		if err := tx.Create(&route).Error; err != nil {
			return fmt.Errorf("insert circulation route: %w", err)
		}
		database.CreateAuditLog(tx, user.ID, "circulation_route", route.ID, "create",
			fmt.Sprintf("route %q with %d members", route.Name, len(route.Members)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out models.CirculationRoute
	if err := withRouteDetails(s.db.WithContext(ctx)).First(&out, route.ID).Error; err != nil {
		return nil, fmt.Errorf("reload circulation route %d: %w", route.ID, err)
	}
	return &out, nil
}

func withRouteDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Members.User").
		Preload("CreatedBy")
}

func (s *CirculationService) ListRoutes(ctx context.Context) ([]models.CirculationRoute, error) {
	routes := []models.CirculationRoute{}
	if err := withRouteDetails(s.db.WithContext(ctx)).
		Order("created_at desc, id desc").
		Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("query circulation routes: %w", err)
	}
	return routes, nil
}

// StartCirculation moves the caller's log for date to IN_REVIEW and opens one
// PENDING circulation per route member. It is the only way a log leaves DRAFT.
// The log is picked the same way Update picks it; if that log is no longer
// DRAFT there is nothing to start.
func (s *CirculationService) StartCirculation(ctx context.Context, actor Actor, date string, routeID uint) ([]models.Circulation, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if actor.UserID == 0 {
		return nil, ErrNoIdentity
	}

	var log models.DailyLog
	err = s.db.WithContext(ctx).
		Where("date = ? AND created_by_id = ?", day, actor.UserID).
		Order("id asc").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDailyLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query daily log: %w", err)
	}
	if log.Status != models.DailyLogDraft {
		return nil, ErrDailyLogNotFound
	}

	var members []models.CirculationRouteMember
	if err := s.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("position asc").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("query route members: %w", err)
	}
	if len(members) == 0 {
		return nil, ErrEmptyRoute
	}

	circulations := make([]models.Circulation, 0, len(members))
	for _, m := range members {
		circulations = append(circulations, models.Circulation{
			DailyLogID:  log.ID,
			ApproverID:  m.UserID,
			Status:      models.CirculationPending,
			CreatedByID: actor.UserID,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// условный переход: второй запуск увидит 0 строк
		res := tx.Model(&models.DailyLog{}).
			Where("id = ? AND status = ?", log.ID, models.DailyLogDraft).
			Update("status", models.DailyLogInReview)
		if res.Error != nil {
			return fmt.Errorf("move daily log to review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDailyLogNotFound
		}
		if err := tx.Create(&circulations).Error; err != nil {
			return fmt.Errorf("insert circulations: %w", err)
		}
		database.CreateAuditLog(tx, actor.UserID, "daily_log", log.ID, "start_circulation",
			fmt.Sprintf("route %d, %d approvers", routeID, len(circulations)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := []models.Circulation{}
	if err := s.db.WithContext(ctx).
		Preload("Approver").
		Where("daily_log_id = ?", log.ID).
		Order("id asc").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("reload circulations: %w", err)
	}
	return out, nil
}

// Decide records the caller's decision on the oldest PENDING circulation
// addressed to them for a log of that date. The last approval promotes the
// log to APPROVED once every circulation on it is APPROVED. A rejection
// leaves the log IN_REVIEW for good.
func (s *CirculationService) Decide(ctx context.Context, actor Actor, date string, in DecisionInput) (*models.Circulation, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if in.Status != models.CirculationApproved && in.Status != models.CirculationRejected {
		return nil, invalidInput(fmt.Sprintf("invalid decision status %q", in.Status))
	}
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}

	var id uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var circ models.Circulation
		err := tx.
			Where("daily_log_id IN (?)", tx.Model(&models.DailyLog{}).Select("id").Where("date = ?", day)).
			Where("approver_id = ? AND status = ?", user.ID, models.CirculationPending).
			Order("id asc").
			First(&circ).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoPendingCirculation
		}
		if err != nil {
			return fmt.Errorf("query pending circulation: %w", err)
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Circulation{}).
			Where("id = ? AND status = ?", circ.ID, models.CirculationPending).
			Updates(map[string]any{
				"status":     in.Status,
				"comment":    strings.TrimSpace(in.Comment),
				"decided_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("update circulation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoPendingCirculation
		}

		if in.Status == models.CirculationApproved {
			// одобрение только единогласное: любой REJECTED держит журнал в IN_REVIEW
			var open int64
			if err := tx.Model(&models.Circulation{}).
				Where("daily_log_id = ? AND status <> ?", circ.DailyLogID, models.CirculationApproved).
				Count(&open).Error; err != nil {
				return fmt.Errorf("count open circulations: %w", err)
			}
			if open == 0 {
				if err := tx.Model(&models.DailyLog{}).
					Where("id = ? AND status = ?", circ.DailyLogID, models.DailyLogInReview).
					Update("status", models.DailyLogApproved).Error; err != nil {
					return fmt.Errorf("approve daily log: %w", err)
				}
			}
		}

		id = circ.ID
		database.CreateAuditLog(tx, user.ID, "circulation", circ.ID, strings.ToLower(string(in.Status)),
			fmt.Sprintf("daily log %d", circ.DailyLogID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out models.Circulation
	if err := s.db.WithContext(ctx).Preload("Approver").First(&out, id).Error; err != nil {
		return nil, fmt.Errorf("reload circulation %d: %w", id, err)
	}
	return &out, nil
}
