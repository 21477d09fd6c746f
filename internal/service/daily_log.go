package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maint-logbook/internal/database"
	"maint-logbook/internal/models"

	"gorm.io/gorm"
)

type DailyLogService struct{ db *gorm.DB }

func NewDailyLogService(db *gorm.DB) *DailyLogService { return &DailyLogService{db: db} }

type EntryInput struct {
	ConstructionProjectID uint              `json:"constructionProjectId"`
	WorkStatus            models.WorkStatus `json:"workStatus"`
	WorkDescription       string            `json:"workDescription"`
	NextWorkPlan          string            `json:"nextWorkPlan"`
}

type DailyLogInput struct {
	NextWorkDate string       `json:"nextWorkDate"`
	IsHoliday    bool         `json:"isHoliday"`
	Entries      []EntryInput `json:"entries"`
}

type ProjectRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// DailyLogView is the answer to "what is recorded for this date".
// Without a log it carries the ongoing projects used to seed a new one;
// the list is always present, empty when a log exists.
type DailyLogView struct {
	Exists          bool             `json:"exists"`
	DailyLog        *models.DailyLog `json:"dailyLog,omitempty"`
	OngoingProjects []ProjectRef     `json:"ongoingProjects"`
}

func withLogDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Entries.ConstructionProject").
		Preload("Circulations", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Circulations.Approver").
		Preload("CreatedBy")
}

// Get returns the log for date regardless of who created it. When several
// logs share a date the earliest one wins.
func (s *DailyLogService) Get(ctx context.Context, date string) (*DailyLogView, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	var log models.DailyLog
	err = withLogDetails(s.db.WithContext(ctx)).
		Where("date = ?", day).
		Order("id asc").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		projects := []ProjectRef{}
		if err := s.db.WithContext(ctx).
			Model(&models.ConstructionProject{}).
			Where("status = ?", models.ConstructionOngoing).
			Order("id asc").
			Find(&projects).Error; err != nil {
			return nil, fmt.Errorf("query ongoing projects: %w", err)
		}
		return &DailyLogView{Exists: false, OngoingProjects: projects}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query daily log: %w", err)
	}
	return &DailyLogView{Exists: true, DailyLog: &log, OngoingProjects: []ProjectRef{}}, nil
}

// Create stores a new DRAFT log with its entries in one transaction. It does
// not check for an existing log on the same date.
func (s *DailyLogService) Create(ctx context.Context, actor Actor, date string, in DailyLogInput) (*models.DailyLog, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	next, err := parseOptionalDate(in.NextWorkDate)
	if err != nil {
		return nil, err
	}
	entries, err := buildEntries(in.Entries)
	if err != nil {
		return nil, err
	}

	var id uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkEntryProjects(tx, entries); err != nil {
			return err
		}
		log := models.DailyLog{
			Date:         day,
			NextWorkDate: next,
			IsHoliday:    in.IsHoliday,
			Status:       models.DailyLogDraft,
			CreatedByID:  user.ID,
			Entries:      entries,
		}
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("insert daily log: %w", err)
		}
		id = log.ID
		database.CreateAuditLog(tx, user.ID, "daily_log", log.ID, "create",
			fmt.Sprintf("daily log %s created with %d entries", day.Format(DateLayout), len(entries)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Update replaces the entries and scalar fields of the caller's DRAFT log.
// Status is left as is.
func (s *DailyLogService) Update(ctx context.Context, actor Actor, date string, in DailyLogInput) (*models.DailyLog, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}

	var id uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var log models.DailyLog
		err := tx.Where("date = ? AND created_by_id = ?", day, user.ID).
			Order("id asc").
			First(&log).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDailyLogNotFound
		}
		if err != nil {
			return fmt.Errorf("query daily log: %w", err)
		}
		if log.Status != models.DailyLogDraft {
			return ErrLogNotEditable
		}

		next, err := parseOptionalDate(in.NextWorkDate)
		if err != nil {
			return err
		}
		entries, err := buildEntries(in.Entries)
		if err != nil {
			return err
		}
		if err := checkEntryProjects(tx, entries); err != nil {
			return err
		}

		if err := tx.Where("daily_log_id = ?", log.ID).Delete(&models.DailyLogEntry{}).Error; err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if len(entries) > 0 {
			for i := range entries {
				entries[i].DailyLogID = log.ID
			}
			if err := tx.Create(&entries).Error; err != nil {
				return fmt.Errorf("insert entries: %w", err)
			}
		}
		if err := tx.Model(&log).Updates(map[string]any{
			"next_work_date": next,
			"is_holiday":     in.IsHoliday,
		}).Error; err != nil {
			return fmt.Errorf("update daily log: %w", err)
		}

		id = log.ID
		database.CreateAuditLog(tx, user.ID, "daily_log", log.ID, "update",
			fmt.Sprintf("daily log %s updated with %d entries", day.Format(DateLayout), len(entries)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// ListMonth returns every user's logs within the month, oldest first.
func (s *DailyLogService) ListMonth(ctx context.Context, yearMonth string) ([]models.DailyLog, error) {
	start, end, err := ParseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}
	logs := []models.DailyLog{}
	if err := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Where("date >= ? AND date < ?", start, end).
		Order("date asc, id asc").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("query daily logs for %s: %w", yearMonth, err)
	}
	return logs, nil
}

func (s *DailyLogService) load(ctx context.Context, id uint) (*models.DailyLog, error) {
	var log models.DailyLog
	if err := withLogDetails(s.db.WithContext(ctx)).First(&log, id).Error; err != nil {
		return nil, fmt.Errorf("reload daily log %d: %w", id, err)
	}
	return &log, nil
}

// buildEntries validates entries and keeps their submitted order in Position.
func buildEntries(in []EntryInput) ([]models.DailyLogEntry, error) {
	entries := make([]models.DailyLogEntry, 0, len(in))
	for i, e := range in {
		if e.ConstructionProjectID == 0 {
			return nil, invalidInput(fmt.Sprintf("entry %d: construction project is required", i+1))
		}
		plan := strings.TrimSpace(e.NextWorkPlan)
		switch e.WorkStatus {
		case models.WorkInProgress:
			if plan == "" {
				return nil, invalidInput(fmt.Sprintf("entry %d: next work plan is required while work is in progress", i+1))
			}
		case models.WorkCompleted:
			plan = ""
		default:
			return nil, invalidInput(fmt.Sprintf("entry %d: invalid work status %q", i+1, e.WorkStatus))
		}
		entries = append(entries, models.DailyLogEntry{
			ConstructionProjectID: e.ConstructionProjectID,
			WorkStatus:            e.WorkStatus,
			WorkDescription:       strings.TrimSpace(e.WorkDescription),
			NextWorkPlan:          plan,
			Position:              i + 1,
		})
	}
	return entries, nil
}

func checkEntryProjects(tx *gorm.DB, entries []models.DailyLogEntry) error {
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ConstructionProjectID)
	}
	want, got, err := countIDs(tx, &models.ConstructionProject{}, ids)
	if err != nil {
		return fmt.Errorf("check construction projects: %w", err)
	}
	if int64(want) != got {
		return invalidInput("construction project not found")
	}
	return nil
}
