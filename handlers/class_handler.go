package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/jobs"
	"github.com/studiobook/studiobook/models"
)

type ClassTemplateRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description,omitempty"`
	DayOfWeek   *int    `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	Time        string  `json:"time" validate:"required,datetime=15:04"`
	Duration    int     `json:"duration" validate:"required,min=15,max=480"`
	Capacity    *int    `json:"capacity" validate:"omitempty,min=1,max=100"`
	Price       int     `json:"price" validate:"min=0"`
	IsRecurring bool    `json:"is_recurring"`
}

func CreateClassTemplate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}

	if _, err := staffMembership(userID, orgID,
		models.MembershipRoleOwner, models.MembershipRoleAdmin, models.MembershipRoleInstructor); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req ClassTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var org models.Organization
	if err := database.DB.First(&org, "id = ?", orgID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Organization not found"})
	}

	capacity := org.DefaultCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}

	template := models.ClassTemplate{
		OrgID:        orgID,
		InstructorID: userID,
		Name:         req.Name,
		Description:  req.Description,
		DayOfWeek:    req.DayOfWeek,
		Time:         req.Time,
		Duration:     req.Duration,
		Capacity:     capacity,
		Price:        req.Price,
		IsRecurring:  req.IsRecurring,
	}
	if err := database.DB.Create(&template).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class template"})
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

func ListClassTemplates(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}

	if _, err := staffMembership(userID, orgID,
		models.MembershipRoleOwner, models.MembershipRoleAdmin, models.MembershipRoleInstructor); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	query := database.DB.Where("org_id = ?", orgID)
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var templates []models.ClassTemplate
	if err := query.Preload("Instructor").Order("created_at desc").Find(&templates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(templates)
}

func DeactivateClassTemplate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}
	if _, err := staffMembership(userID, orgID, models.MembershipRoleOwner, models.MembershipRoleAdmin); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	result := database.DB.Model(&models.ClassTemplate{}).
		Where("id = ? AND org_id = ?", c.Params("templateId"), orgID).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate class template"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class template not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateClassInstances lets org staff materialize upcoming instances on
// demand instead of waiting for the cron sweep.
func GenerateClassInstances(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}
	if _, err := staffMembership(userID, orgID, models.MembershipRoleOwner, models.MembershipRoleAdmin); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	created, err := jobs.GenerateInstancesForOrg(orgID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate class instances"})
	}

	return c.JSON(fiber.Map{"created": created})
}

// ListOrgClasses is the public catalog: upcoming scheduled instances for an
// org slug, each with remaining spots.
func ListOrgClasses(c *fiber.Ctx) error {
	var org models.Organization
	if err := database.DB.Where("slug = ?", c.Params("slug")).First(&org).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Organization not found"})
	}

	var instances []models.ClassInstance
	err := database.DB.
		Preload("Template").
		Where("org_id = ? AND status = ? AND date > ?", org.ID, models.InstanceStatusScheduled, time.Now()).
		Order("date asc").
		Find(&instances).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	type instanceView struct {
		models.ClassInstance
		SpotsLeft int64 `json:"spots_left"`
	}

	views := make([]instanceView, 0, len(instances))
	for _, instance := range instances {
		var confirmed int64
		err := database.DB.Model(&models.Booking{}).
			Where("class_instance_id = ? AND status = ?", instance.ID, models.BookingStatusConfirmed).
			Count(&confirmed).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		spotsLeft := int64(instance.Capacity) - confirmed
		if spotsLeft < 0 {
			spotsLeft = 0
		}
		views = append(views, instanceView{ClassInstance: instance, SpotsLeft: spotsLeft})
	}

	return c.JSON(views)
}
