package energy

import (
	"time"

	"github.com/yourname/smartcoach/internal"
)

// ActivityMultipliers maps activity levels to the factor applied to BMR.
var ActivityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// ProfileTDEE estimates expenditure from a user profile with the
// Mifflin-St Jeor equation. It is used as the prior before a log has enough
// history to learn from.
func ProfileTDEE(p *internal.UserProfile, weight float64, unit internal.WeightUnit, now time.Time) (float64, bool) {
	if p == nil || p.BirthDate == nil || p.HeightCM <= 0 || weight <= 0 {
		return 0, false
	}
	if p.Sex != "male" && p.Sex != "female" {
		return 0, false
	}
	mult, ok := ActivityMultipliers[p.ActivityLevel]
	if !ok {
		return 0, false
	}

	age := now.Year() - p.BirthDate.Year()
	if now.Before(p.BirthDate.AddDate(age, 0, 0)) {
		age--
	}
	if age < 0 || age > 130 {
		return 0, false
	}

	bmr := 10*ToKg(weight, unit) + 6.25*p.HeightCM - 5*float64(age)
	if p.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr * mult, true
}
