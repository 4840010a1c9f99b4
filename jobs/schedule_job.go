package jobs

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/models"
)

const generateHorizonDays = 14

// GenerateClassInstances materializes upcoming ClassInstance rows from every
// org's recurring templates. Runs on a cron schedule; creating an instance
// that already exists for a template+date is skipped, so reruns are harmless.
func GenerateClassInstances() {
	log.Println("Running job: GenerateClassInstances...")

	created, err := generateInstances(uuid.Nil)
	if err != nil {
		log.Printf("Error generating class instances: %v", err)
		return
	}
	if created > 0 {
		log.Printf("Generated %d class instances", created)
	}
}

// GenerateInstancesForOrg is the on-demand variant used by the admin surface.
func GenerateInstancesForOrg(orgID uuid.UUID) (int, error) {
	return generateInstances(orgID)
}

func generateInstances(orgID uuid.UUID) (int, error) {
	query := database.DB.Where("is_active = ? AND is_recurring = ? AND day_of_week IS NOT NULL", true, true)
	if orgID != uuid.Nil {
		query = query.Where("org_id = ?", orgID)
	}

	var templates []models.ClassTemplate
	if err := query.Find(&templates).Error; err != nil {
		return 0, err
	}

	now := time.Now()
	created := 0

	for _, template := range templates {
		classTime, err := time.Parse("15:04", template.Time)
		if err != nil {
			log.Printf("Template %s has an invalid time %q, skipping", template.ID, template.Time)
			continue
		}

		for offset := 0; offset < generateHorizonDays; offset++ {
			day := now.AddDate(0, 0, offset)
			if int(day.Weekday()) != *template.DayOfWeek {
				continue
			}

			date := time.Date(day.Year(), day.Month(), day.Day(),
				classTime.Hour(), classTime.Minute(), 0, 0, now.Location())
			if !date.After(now) {
				continue
			}

			var existing int64
			err := database.DB.Model(&models.ClassInstance{}).
				Where("template_id = ? AND date = ?", template.ID, date).
				Count(&existing).Error
			if err != nil {
				return created, err
			}
			if existing > 0 {
				continue
			}

			instance := models.ClassInstance{
				OrgID:      template.OrgID,
				TemplateID: template.ID,
				Date:       date,
				Capacity:   template.Capacity,
				Status:     models.InstanceStatusScheduled,
			}
			if err := database.DB.Create(&instance).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}
