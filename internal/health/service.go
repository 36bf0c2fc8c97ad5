package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/user"
)

// Store is the persistence the service needs
type Store interface {
	SaveProfile(ctx context.Context, userID uuid.UUID, in ProfileInput, m Metrics) error
	UpdateHealthData(ctx context.Context, userID uuid.UUID, in HealthDataInput, m Metrics) error
	UpdateMeasurements(ctx context.Context, userID uuid.UUID, in MeasurementsInput) (*user.User, error)
	UpsertSleep(ctx context.Context, userID uuid.UUID, date string, hours float64) error
	SleepByDates(ctx context.Context, userID uuid.UUID, dates []string) (map[string]float64, error)
	ListSleep(ctx context.Context, userID uuid.UUID) ([]SleepEntry, error)
	LogFood(ctx context.Context, userID uuid.UUID, in FoodInput, at time.Time) error
	SumFood(ctx context.Context, userID uuid.UUID, mealType string, from, to time.Time) (FoodSums, error)
}

// UserReader loads users by id
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Service handles profile, sleep and food logic. Calendar days are taken in loc.
type Service struct {
	store  Store
	users  UserReader
	loc    *time.Location
	now    func() time.Time
	logger *logging.Logger
}

func NewService(store Store, users UserReader, loc *time.Location, logger *logging.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:  store,
		users:  users,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Service) SaveProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) error {
	m := ComputeMetrics(in.Weight, in.Height, in.Activity, in.TargetWeight)
	if err := s.store.SaveProfile(ctx, userID, in, m); err != nil {
		return err
	}

	s.logger.Info("profile saved", "user_id", userID, "bmi", m.BMI, "calorie_intake", m.CalorieIntake)
	return nil
}

func (s *Service) UpdateHealthData(ctx context.Context, userID uuid.UUID, in HealthDataInput) error {
	m := ComputeMetrics(in.Weight, in.Height, in.Activity, in.TargetWeight)
	return s.store.UpdateHealthData(ctx, userID, in, m)
}

func (s *Service) UpdateMeasurements(ctx context.Context, userID uuid.UUID, in MeasurementsInput) (*user.User, error) {
	return s.store.UpdateMeasurements(ctx, userID, in)
}

func (s *Service) LogSleep(ctx context.Context, userID uuid.UUID, in SleepInput) error {
	return s.store.UpsertSleep(ctx, userID, in.Date, in.Hours)
}

// SleepWeek returns the last seven calendar days ending today. Days without
// an entry report the default of six hours.
func (s *Service) SleepWeek(ctx context.Context, userID uuid.UUID) (*SleepWeek, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	today := s.startOfDay()
	dates := make([]string, 0, sleepWindowDays)
	for i := sleepWindowDays - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i).Format(dateLayout))
	}

	stored, err := s.store.SleepByDates(ctx, userID, dates)
	if err != nil {
		return nil, err
	}

	week := &SleepWeek{
		SleepHours: make([]float64, 0, len(dates)),
		Last7Days:  dates,
	}
	for _, d := range dates {
		hours, ok := stored[d]
		if !ok {
			hours = defaultSleepHour
		}
		week.SleepHours = append(week.SleepHours, hours)
	}
	return week, nil
}

func (s *Service) LogFood(ctx context.Context, userID uuid.UUID, in FoodInput) error {
	if err := s.store.LogFood(ctx, userID, in, s.now()); err != nil {
		return err
	}

	s.logger.Debug("food logged", "user_id", userID, "meal_type", in.MealType, "calories", in.Calories)
	return nil
}

// DailyCalories sums today's logged calories across all meals
func (s *Service) DailyCalories(ctx context.Context, userID uuid.UUID) (float64, error) {
	from := s.startOfDay()
	sums, err := s.store.SumFood(ctx, userID, "", from, from.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	return sums.Calories, nil
}

func (s *Service) MealTotals(ctx context.Context, userID uuid.UUID, mealType string) (*MealTotals, error) {
	if mealType == "" {
		mealType = defaultMealType
	}

	from := s.startOfDay()
	sums, err := s.store.SumFood(ctx, userID, mealType, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return &MealTotals{
		MealType:      mealType,
		TotalCalories: sums.Calories,
		TotalCarbs:    sums.Carbs,
		TotalProteins: sums.Proteins,
		TotalFats:     sums.Fats,
	}, nil
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sleep, err := s.store.ListSleep(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sleep data: %w", err)
	}

	return &Profile{User: u, SleepData: sleep}, nil
}

func (s *Service) startOfDay() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}
