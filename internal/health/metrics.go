package health

import (
	"fmt"
	"math"

	"github.com/redmonkez12/fitness-api/internal/user"
)

// Activity levels with their own calorie factor. Anything else counts as active.
const (
	ActivitySedentary = "Sedentary"
	ActivityModerate  = "Moderate"
)

const (
	// expected weekly weight change in kg
	weeklyWeightChange = 0.45

	magnesiumTarget = 0.4
	sodiumTarget    = 1
)

// Metrics are the values derived from a user's body data
type Metrics struct {
	BMI                         float64
	CalorieIntake               int
	Macros                      user.Macros
	EstimatedTimeToTargetWeight string
}

// ComputeMetrics derives BMI, daily calories, macros and time to target.
// height is in cm, weights in kg.
func ComputeMetrics(weight, height float64, activity string, targetWeight float64) Metrics {
	calories := CalorieIntake(weight, activity)
	c := float64(calories)

	return Metrics{
		BMI:           BMI(weight, height),
		CalorieIntake: calories,
		Macros: user.Macros{
			Protein:   roundInt(c * 0.3 / 4),
			Carbs:     roundInt(c * 0.4 / 4),
			Fats:      roundInt(c * 0.3 / 9),
			Magnesium: magnesiumTarget,
			Sodium:    sodiumTarget,
		},
		EstimatedTimeToTargetWeight: fmt.Sprintf("%.1f weeks", math.Abs(weight-targetWeight)/weeklyWeightChange),
	}
}

// BMI rounded to one decimal
func BMI(weight, height float64) float64 {
	m := height / 100
	return math.Round(weight/(m*m)*10) / 10
}

func CalorieIntake(weight float64, activity string) int {
	return roundInt(weight * activityFactor(activity))
}

func activityFactor(activity string) float64 {
	switch activity {
	case ActivitySedentary:
		return 24
	case ActivityModerate:
		return 30
	default:
		return 35
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
