package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/fitness-api/internal/user"
)

func TestBMI(t *testing.T) {
	assert.Equal(t, 22.9, BMI(70, 175))
	assert.Equal(t, 24.7, BMI(80, 180))
	assert.Equal(t, 20.0, BMI(45, 150))
}

func TestCalorieIntake(t *testing.T) {
	assert.Equal(t, 1680, CalorieIntake(70, ActivitySedentary))
	assert.Equal(t, 2100, CalorieIntake(70, ActivityModerate))
	assert.Equal(t, 2450, CalorieIntake(70, "Active"))
	assert.Equal(t, 2450, CalorieIntake(70, ""))
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(70, 175, ActivitySedentary, 65)

	assert.Equal(t, 22.9, m.BMI)
	assert.Equal(t, 1680, m.CalorieIntake)
	assert.Equal(t, user.Macros{Protein: 126, Carbs: 168, Fats: 56, Magnesium: 0.4, Sodium: 1}, m.Macros)
	assert.Equal(t, "11.1 weeks", m.EstimatedTimeToTargetWeight)
}

func TestComputeMetrics_GainingWeight(t *testing.T) {
	m := ComputeMetrics(60, 170, ActivityModerate, 69)

	assert.Equal(t, 1800, m.CalorieIntake)
	assert.Equal(t, "20.0 weeks", m.EstimatedTimeToTargetWeight)
}
