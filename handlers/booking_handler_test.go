package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/models"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.ClassTemplate{},
		&models.ClassInstance{},
		&models.Package{},
		&models.Payment{},
		&models.UserPackage{},
		&models.Booking{},
	))
	database.DB = db
	return db
}

// asUser stands in for the jwt middleware, putting a parsed token into locals.
func asUser(userID uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID.String(),
		}))
		return c.Next()
	}
}

func TestGetMyBookings_EmptyList(t *testing.T) {
	newHandlerTestDB(t)

	app := fiber.New()
	app.Get("/api/v1/bookings/me", asUser(uuid.New()), GetMyBookings)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/bookings/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetMyBookings_SurfacesDatabaseError(t *testing.T) {
	db := newHandlerTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.ClassInstance{}))

	app := fiber.New()
	app.Get("/api/v1/bookings/me", asUser(uuid.New()), GetMyBookings)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/bookings/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
