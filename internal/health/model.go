package health

import (
	"errors"
	"strings"
	"time"

	"github.com/redmonkez12/fitness-api/internal/user"
)

const (
	dateLayout       = "2006-01-02"
	defaultMealType  = "breakfast"
	defaultSleepHour = 6
	sleepWindowDays  = 7
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidDate   = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidHours  = errors.New("hours must be between 0 and 24")
	ErrInvalidValue  = errors.New("values must not be negative")
)

// ProfileInput is the body of POST /api/users/save
type ProfileInput struct {
	Gender           string   `json:"gender"`
	Age              int      `json:"age"`
	Activity         string   `json:"activity"`
	Height           float64  `json:"height"`
	Weight           float64  `json:"weight"`
	TargetWeight     float64  `json:"targetWeight"`
	MedicalCondition []string `json:"medicalCondition"`
}

func (in *ProfileInput) Validate() error {
	in.Gender = strings.TrimSpace(in.Gender)
	in.Activity = strings.TrimSpace(in.Activity)

	if in.Gender == "" || in.Age == 0 || in.Activity == "" || in.Height == 0 || in.Weight == 0 || in.TargetWeight == 0 {
		return ErrMissingFields
	}
	if in.Age < 0 || in.Height < 0 || in.Weight < 0 || in.TargetWeight < 0 {
		return ErrInvalidValue
	}
	if in.MedicalCondition == nil {
		in.MedicalCondition = []string{}
	}
	return nil
}

// HealthDataInput is the body of POST /api/users/update-health-data
type HealthDataInput struct {
	Height       float64 `json:"height"`
	Weight       float64 `json:"weight"`
	Age          int     `json:"age"`
	Activity     string  `json:"activity"`
	TargetWeight float64 `json:"targetWeight"`
}

func (in *HealthDataInput) Validate() error {
	in.Activity = strings.TrimSpace(in.Activity)

	if in.Height == 0 || in.Weight == 0 || in.Age == 0 || in.Activity == "" || in.TargetWeight == 0 {
		return ErrMissingFields
	}
	if in.Age < 0 || in.Height < 0 || in.Weight < 0 || in.TargetWeight < 0 {
		return ErrInvalidValue
	}
	return nil
}

// MeasurementsInput overrides only the fields that are present
type MeasurementsInput struct {
	Chest *float64 `json:"chest"`
	Waist *float64 `json:"waist"`
	Hips  *float64 `json:"hips"`
}

func (in *MeasurementsInput) Validate() error {
	for _, v := range []*float64{in.Chest, in.Waist, in.Hips} {
		if v != nil && *v < 0 {
			return ErrInvalidValue
		}
	}
	return nil
}

type SleepInput struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

func (in *SleepInput) Validate() error {
	in.Date = strings.TrimSpace(in.Date)
	if in.Date == "" {
		return ErrMissingFields
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return ErrInvalidDate
	}
	if in.Hours < 0 || in.Hours > 24 {
		return ErrInvalidHours
	}
	return nil
}

// FoodInput is one logged food item
type FoodInput struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
	MealType string  `json:"mealType"`
}

func (in *FoodInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.MealType = strings.ToLower(strings.TrimSpace(in.MealType))

	if in.Name == "" {
		return ErrMissingFields
	}
	if in.Calories < 0 || in.Carbs < 0 || in.Proteins < 0 || in.Fats < 0 {
		return ErrInvalidValue
	}
	if in.MealType == "" {
		in.MealType = defaultMealType
	}
	return nil
}

type SleepEntry struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// SleepWeek lists the last seven days, oldest first
type SleepWeek struct {
	SleepHours []float64 `json:"sleepHours"`
	Last7Days  []string  `json:"last7Days"`
}

// MealTotals are today's sums for one meal type
type MealTotals struct {
	MealType      string  `json:"mealType"`
	TotalCalories float64 `json:"totalBreakfastCalories"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalProteins float64 `json:"totalProteins"`
	TotalFats     float64 `json:"totalFats"`
}

// Profile is the user projection returned by GET /api/users/profile
type Profile struct {
	*user.User
	SleepData []SleepEntry `json:"sleepData"`
}
